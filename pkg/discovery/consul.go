package discovery

import (
	"fmt"
	"log"
	"strconv"

	"adaptive-service/internal/config"

	"github.com/hashicorp/consul/api"
)

type ServiceRegistry struct {
	client *api.Client
	config *config.Config
}

func NewServiceRegistry(cfg *config.Config) (*ServiceRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.ConsulAddress

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %v", err)
	}

	return &ServiceRegistry{
		client: client,
		config: cfg,
	}, nil
}

// Register announces the service to consul with an HTTP health check.
func (sr *ServiceRegistry) Register() error {
	httpPort, _ := strconv.Atoi(sr.config.Port)

	registration := &api.AgentServiceRegistration{
		ID:      sr.config.ServiceName + "-http",
		Name:    sr.config.ServiceName,
		Port:    httpPort,
		Address: sr.config.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%s/health", sr.config.ServiceAddress, sr.config.Port),
			Interval: "10s",
			Timeout:  "5s",
		},
		Tags: []string{"adaptive", "quiz", "http"},
		Meta: map[string]string{
			"protocol": "http",
		},
	}

	if err := sr.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service with Consul: %v", err)
	}

	log.Println("Successfully registered service with Consul")
	return nil
}

func (sr *ServiceRegistry) Deregister() error {
	if err := sr.client.Agent().ServiceDeregister(sr.config.ServiceName + "-http"); err != nil {
		log.Printf("Error deregistering service: %v", err)
		return err
	}
	return nil
}
