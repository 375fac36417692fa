package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const DefaultTargetHost = "rpc.bt.io"

type FaultKind string

const (
	FaultTransport FaultKind = "transport"
	FaultProtocol  FaultKind = "protocol"
)

const (
	DefaultFaultStatus  = http.StatusTooManyRequests
	DefaultFaultCode    = ErrCodeInternal
	DefaultFaultMessage = "Internal error"
)

// Config describes one test scenario. It is turned into an immutable
// Scenario by NewScenario and never changed afterwards. Start from
// DefaultConfig: zero is a real value for the block number, the transaction
// count, token decimals and the Safe nonce, so those are taken as given.
type Config struct {
	TargetHost string        `json:"targetHost" yaml:"targetHost"`
	Chain      ChainConfig   `json:"chain" yaml:"chain"`
	Fixtures   FixtureConfig `json:"fixtures" yaml:"fixtures"`
	Fault      *FaultConfig  `json:"fault,omitempty" yaml:"fault,omitempty"`
}

type ChainConfig struct {
	ChainID              uint64 `json:"chainId" yaml:"chainId"`
	BlockNumber          uint64 `json:"blockNumber" yaml:"blockNumber"`
	BlockTimestamp       uint64 `json:"blockTimestamp" yaml:"blockTimestamp"`
	GasLimit             uint64 `json:"gasLimit" yaml:"gasLimit"`
	Balance              string `json:"balance" yaml:"balance"`
	TransactionCount     uint64 `json:"transactionCount" yaml:"transactionCount"`
	GasPrice             uint64 `json:"gasPrice" yaml:"gasPrice"`
	MaxPriorityFeePerGas uint64 `json:"maxPriorityFeePerGas" yaml:"maxPriorityFeePerGas"`
	GasEstimate          uint64 `json:"gasEstimate" yaml:"gasEstimate"`
	SafeCode             string `json:"safeCode" yaml:"safeCode"`
}

type FixtureConfig struct {
	TokenAddress  string `json:"tokenAddress" yaml:"tokenAddress"`
	TokenName     string `json:"tokenName" yaml:"tokenName"`
	TokenSymbol   string `json:"tokenSymbol" yaml:"tokenSymbol"`
	TokenDecimals uint8  `json:"tokenDecimals" yaml:"tokenDecimals"`
	TokenBalance  string `json:"tokenBalance" yaml:"tokenBalance"`

	SafeAddress   string   `json:"safeAddress" yaml:"safeAddress"`
	SafeOwners    []string `json:"safeOwners" yaml:"safeOwners"`
	SafeThreshold uint64   `json:"safeThreshold" yaml:"safeThreshold"`
	SafeNonce     uint64   `json:"safeNonce" yaml:"safeNonce"`
}

type FaultConfig struct {
	Kind    FaultKind `json:"kind" yaml:"kind"`
	Status  int       `json:"status,omitempty" yaml:"status,omitempty"`
	Code    int64     `json:"code,omitempty" yaml:"code,omitempty"`
	Message string    `json:"message,omitempty" yaml:"message,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		TargetHost: DefaultTargetHost,
		Chain: ChainConfig{
			ChainID:              199,
			BlockNumber:          2,
			BlockTimestamp:       1700000000,
			GasLimit:             30000000,
			Balance:              "1000000000000000000",
			TransactionCount:     1,
			GasPrice:             1000000000,
			MaxPriorityFeePerGas: 2000000000,
			GasEstimate:          21000,
			SafeCode:             "0x60806040",
		},
		Fixtures: FixtureConfig{
			TokenAddress:  "0x5fbdb2315678afecb367f032d93f642f64180aa3",
			TokenName:     "Mock Token",
			TokenSymbol:   "MCK",
			TokenDecimals: 18,
			TokenBalance:  "1000000000000000000",
			SafeAddress:   "0xe7f1725e7734ce288f8367e1bb143e90bb3f0512",
			SafeOwners:    []string{"0x70997970c51812dc3a010c7d01b50e0d17dc79c8"},
			SafeThreshold: 1,
			SafeNonce:     5,
		},
	}
}

// withDefaults fills zero fields from DefaultConfig, except the ones where
// zero is a valid scenario.
func (c Config) withDefaults() Config {
	d := DefaultConfig()

	if c.TargetHost == "" {
		c.TargetHost = d.TargetHost
	}

	setUint := func(v *uint64, def uint64) {
		if *v == 0 {
			*v = def
		}
	}
	setString := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}

	setUint(&c.Chain.ChainID, d.Chain.ChainID)
	setUint(&c.Chain.BlockTimestamp, d.Chain.BlockTimestamp)
	setUint(&c.Chain.GasLimit, d.Chain.GasLimit)
	setString(&c.Chain.Balance, d.Chain.Balance)
	setUint(&c.Chain.GasPrice, d.Chain.GasPrice)
	setUint(&c.Chain.MaxPriorityFeePerGas, d.Chain.MaxPriorityFeePerGas)
	setUint(&c.Chain.GasEstimate, d.Chain.GasEstimate)
	setString(&c.Chain.SafeCode, d.Chain.SafeCode)

	setString(&c.Fixtures.TokenAddress, d.Fixtures.TokenAddress)
	setString(&c.Fixtures.TokenName, d.Fixtures.TokenName)
	setString(&c.Fixtures.TokenSymbol, d.Fixtures.TokenSymbol)
	setString(&c.Fixtures.TokenBalance, d.Fixtures.TokenBalance)
	setString(&c.Fixtures.SafeAddress, d.Fixtures.SafeAddress)
	if len(c.Fixtures.SafeOwners) == 0 {
		c.Fixtures.SafeOwners = d.Fixtures.SafeOwners
	}
	setUint(&c.Fixtures.SafeThreshold, d.Fixtures.SafeThreshold)

	if c.Fault != nil {
		f := *c.Fault
		if f.Status == 0 {
			f.Status = DefaultFaultStatus
		}
		if f.Code == 0 {
			f.Code = DefaultFaultCode
		}
		if f.Message == "" {
			f.Message = DefaultFaultMessage
		}
		c.Fault = &f
	}

	return c
}

func (c *Config) validate() error {
	for name, addr := range map[string]string{
		"tokenAddress": c.Fixtures.TokenAddress,
		"safeAddress":  c.Fixtures.SafeAddress,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s: %q", name, addr)
		}
	}

	for _, owner := range c.Fixtures.SafeOwners {
		if !common.IsHexAddress(owner) {
			return fmt.Errorf("invalid safe owner: %q", owner)
		}
	}

	if strings.EqualFold(c.Fixtures.TokenAddress, c.Fixtures.SafeAddress) {
		return fmt.Errorf("token and safe fixtures share address %s", c.Fixtures.TokenAddress)
	}

	if _, err := parseBig(c.Chain.Balance); err != nil {
		return fmt.Errorf("invalid balance: %v", err)
	}

	if _, err := parseBig(c.Fixtures.TokenBalance); err != nil {
		return fmt.Errorf("invalid tokenBalance: %v", err)
	}

	if c.Fault == nil {
		return nil
	}

	switch c.Fault.Kind {
	case FaultTransport:
		if c.Fault.Status < 100 || c.Fault.Status > 599 || (c.Fault.Status >= 200 && c.Fault.Status < 300) {
			return fmt.Errorf("transport fault needs a non-success http status, got %d", c.Fault.Status)
		}
	case FaultProtocol:
	default:
		return fmt.Errorf("blank or unsupported fault kind: %q", c.Fault.Kind)
	}

	return nil
}

// parseBig accepts decimal or 0x prefixed hex.
func parseBig(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("not a non-negative integer: %q", s)
	}

	return v, nil
}

// ParseConfig decodes a scenario file over DefaultConfig, so fields the file
// leaves out keep their defaults. YAML is used for .yaml and .yml files, JSON
// for everything else.
func ParseConfig(name string, bts []byte) (*Config, error) {
	cfg := DefaultConfig()

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(bts, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml config %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(bts, cfg); err != nil {
			return nil, fmt.Errorf("parse json config %s: %w", name, err)
		}
	}

	return cfg, nil
}

func LoadConfigFile(path string) (*Config, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseConfig(path, bts)
}

// WatchConfigFile loads the scenario at path, hands it to apply, then polls
// the file and applies every changed version until ctx is done. Only the
// first load can fail; later broken files are logged and skipped.
func WatchConfigFile(ctx context.Context, path string, interval time.Duration, apply func(*Scenario)) error {
	var current []byte

	reload := func() error {
		bts, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if current != nil && bytes.Equal(bts, current) {
			return nil
		}

		cfg, err := ParseConfig(path, bts)
		if err != nil {
			return err
		}

		scenario, err := NewScenario(cfg)
		if err != nil {
			return err
		}

		logrus.Infof("reloading scenario from %s: %s", path, scenario.Info().Variant)
		apply(scenario)
		current = bts

		return nil
	}

	// loading on init.
	if err := reload(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := reload(); err != nil {
					logrus.Warnf("hot reload config err, use old scenario: %v", err)
				}
			case <-ctx.Done():
				logrus.Info("quit loop config")
				return
			}
		}
	}()

	return nil
}
