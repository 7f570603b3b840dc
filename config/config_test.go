package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresTcpListen(t *testing.T) {
	cfg := Default()
	cfg.Mqtt.TCPListen = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsInflightOverQueued(t *testing.T) {
	cfg := Default()
	cfg.Mqtt.MaxInflight = cfg.Mqtt.MaxQueued + 1
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownDeliveryMode(t *testing.T) {
	cfg := Default()
	cfg.Mqtt.DeliveryMode = "broadcast"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownStoreType(t *testing.T) {
	cfg := Default()
	cfg.Mqtt.Persistence.Session.Type = "postgres"
	assert.Error(t, cfg.Validate())
}
