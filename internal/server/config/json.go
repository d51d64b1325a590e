package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/flagx"
	"github.com/dmitrijs2005/walletkeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr          string         `json:"endpoint_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	ChainRPCURL           string         `json:"chain_rpc_url"`
	FactoryAddress        string         `json:"factory_address"`
	DeployerKey           string         `json:"deployer_key"`
	GasEstimateTimeout    timex.Duration `json:"gas_estimate_timeout"`
	BroadcastTimeout      timex.Duration `json:"broadcast_timeout"`
	ConfirmTimeout        timex.Duration `json:"confirm_timeout"`
	ReceiptPollInterval   timex.Duration `json:"receipt_poll_interval"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The JSON file path is taken from the -c or -config
// command-line flags; if neither is set, no JSON file is loaded.
//
// Duration fields are only applied when the JSON file sets them, so a
// partial config file does not zero out the defaults.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	}
	if c.ChainRPCURL != "" {
		config.ChainRPCURL = c.ChainRPCURL
	}
	if c.FactoryAddress != "" {
		config.FactoryAddress = c.FactoryAddress
	}
	if c.DeployerKey != "" {
		config.DeployerKey = c.DeployerKey
	}
	if c.GasEstimateTimeout.Duration != 0 {
		config.GasEstimateTimeout = time.Duration(c.GasEstimateTimeout.Duration)
	}
	if c.BroadcastTimeout.Duration != 0 {
		config.BroadcastTimeout = time.Duration(c.BroadcastTimeout.Duration)
	}
	if c.ConfirmTimeout.Duration != 0 {
		config.ConfirmTimeout = time.Duration(c.ConfirmTimeout.Duration)
	}
	if c.ReceiptPollInterval.Duration != 0 {
		config.ReceiptPollInterval = time.Duration(c.ReceiptPollInterval.Duration)
	}
}
