package hass

import (
	"fmt"
)

const priceUnit = "lei/MWh"

const (
	sensorCurrentPrice = "current_hour_price"
	sensorDailyAverage = "daily_average_price"
	sensorStatus       = "download_status"
	sensorNextForecast = "next_hour_forecast"
)

type sensorDef struct {
	key            string
	name           string
	unit           string
	deviceClass    string
	stateClass     string
	withAttributes bool
}

var sensors = []sensorDef{
	{sensorCurrentPrice, "Current Hour Price", priceUnit, "monetary", "measurement", true},
	{sensorDailyAverage, "Daily Average Price", priceUnit, "monetary", "measurement", false},
	{sensorStatus, "Download Status", "", "", "", true},
	{sensorNextForecast, "Next Hour Forecast", priceUnit, "monetary", "measurement", true},
}

type discoveryDevice struct {
	Identifiers []string `json:"identifiers"`
	Name        string   `json:"name"`
}

type discoveryConfig struct {
	Name                string          `json:"name"`
	UniqueId            string          `json:"unique_id"`
	StateTopic          string          `json:"state_topic"`
	AvailabilityTopic   string          `json:"availability_topic"`
	JsonAttributesTopic string          `json:"json_attributes_topic,omitempty"`
	UnitOfMeasurement   string          `json:"unit_of_measurement,omitempty"`
	DeviceClass         string          `json:"device_class,omitempty"`
	StateClass          string          `json:"state_class,omitempty"`
	Device              discoveryDevice `json:"device"`
}

// publishDiscovery announces the sensors to Home Assistant. Configs
// are retained so entities survive a broker or host restart.
func (h *Hass) publishDiscovery() {
	node := h.cnfg.GetBaseTopic()
	device := discoveryDevice{
		Identifiers: []string{node},
		Name:        "Romania Dynamic Tariff",
	}

	for _, s := range sensors {
		cfg := discoveryConfig{
			Name:              s.name,
			UniqueId:          fmt.Sprintf("%s_%s", node, s.key),
			StateTopic:        h.stateTopic(s.key),
			AvailabilityTopic: h.availabilityTopic(),
			UnitOfMeasurement: s.unit,
			DeviceClass:       s.deviceClass,
			StateClass:        s.stateClass,
			Device:            device,
		}
		if s.withAttributes {
			cfg.JsonAttributesTopic = h.attributesTopic(s.key)
		}

		topic := fmt.Sprintf("%s/sensor/%s/%s/config", h.cnfg.GetDiscoveryPrefix(), node, s.key)
		h.publishJson(topic, cfg, true)
	}

	h.logger.Info("discovery configs published", "noOfSensors", len(sensors))
}

func (h *Hass) availabilityTopic() string {
	return h.cnfg.GetBaseTopic() + "/availability"
}

func (h *Hass) stateTopic(key string) string {
	return fmt.Sprintf("%s/sensor/%s/state", h.cnfg.GetBaseTopic(), key)
}

func (h *Hass) attributesTopic(key string) string {
	return fmt.Sprintf("%s/sensor/%s/attributes", h.cnfg.GetBaseTopic(), key)
}
