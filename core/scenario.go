package core

import (
	"fmt"
	"net/http"
)

// Scenario is the immutable simulator set up for one test scenario.
type Scenario struct {
	config      Config
	router      *CallRouter
	strategy    IStrategy
	interceptor *Interceptor
}

type ScenarioInfo struct {
	TargetHost string   `json:"targetHost"`
	Variant    string   `json:"variant"`
	ChainID    uint64   `json:"chainId"`
	Fixtures   []string `json:"fixtures"`
	Version    string   `json:"version"`
}

func NewScenario(cfg *Config) (*Scenario, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	c := cfg.withDefaults()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario config: %w", err)
	}

	s := &Scenario{
		config: c,
		router: NewCallRouter(TokenFixture(c.Fixtures), SafeFixture(c.Fixtures)),
	}

	if c.Fault == nil {
		s.strategy = newDispatchStrategy(c.Chain, c.Fixtures.SafeAddress, s.router)
	} else {
		switch c.Fault.Kind {
		case FaultTransport:
			s.strategy = newTransportFaultStrategy(c.Fault.Status)
		case FaultProtocol:
			s.strategy = newProtocolFaultStrategy(c.Fault.Code, c.Fault.Message)
		}
	}

	s.interceptor = NewInterceptor(c.TargetHost, s.strategy)

	return s, nil
}

// DefaultScenario answers successfully with the default fixtures.
func DefaultScenario() *Scenario {
	s, err := NewScenario(DefaultConfig())
	if err != nil {
		panic(fmt.Errorf("default scenario: %v", err))
	}

	return s
}

func (s *Scenario) Config() Config {
	return s.config
}

func (s *Scenario) Interceptor() *Interceptor {
	return s.interceptor
}

func (s *Scenario) Router() *CallRouter {
	return s.router
}

// Dispatcher is nil unless the scenario answers successfully.
func (s *Scenario) Dispatcher() *DispatchStrategy {
	d, _ := s.strategy.(*DispatchStrategy)
	return d
}

// Transport returns a RoundTripper that simulates the target host and sends
// everything else to next.
func (s *Scenario) Transport(next http.RoundTripper) *Transport {
	return NewTransport(s.interceptor, next)
}

func (s *Scenario) Info() ScenarioInfo {
	return ScenarioInfo{
		TargetHost: s.config.TargetHost,
		Variant:    s.strategy.variant(),
		ChainID:    s.config.Chain.ChainID,
		Fixtures:   []string{s.config.Fixtures.TokenAddress, s.config.Fixtures.SafeAddress},
		Version:    Version,
	}
}
