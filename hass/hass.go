// Package hass publishes the price sensors to Home Assistant over
// MQTT discovery. It is the only part of the daemon that knows how
// the host names and renders entities.
package hass

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/angas/rotariff-go/calc"
	"github.com/angas/rotariff-go/config"
	"github.com/angas/rotariff-go/convert"
	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/opcom"
	"github.com/angas/rotariff-go/pzu"
)

type Hass struct {
	client mqtt.Client
	logger *slog.Logger
	data   *pzu.Data
	cnfg   config.AppConfigMqtt
	region string
}

func New(data *pzu.Data, cnfg config.AppConfigMqtt, region string) *Hass {
	logger := slog.Default().With("module", "hass")

	h := &Hass{
		logger: logger,
		data:   data,
		cnfg:   cnfg,
		region: strings.ToUpper(region),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cnfg.Url)
	opts.SetClientID(cnfg.GetClientId())
	opts.SetUsername(cnfg.Username)
	opts.SetPassword(cnfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetWill(h.availabilityTopic(), "offline", 0, true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("home assistant MQTT connected")
		h.publishDiscovery()
		h.publish(h.availabilityTopic(), "online", true)
		h.PublishState()
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("home assistant MQTT connection lost", slog.Any("error", err))
	}

	mqttLogger := slog.Default().With("module", "mqtt")
	mqtt.CRITICAL = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.ERROR = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.WARN = newMqttLogger(mqttLogger, slog.LevelWarn)

	h.client = mqtt.NewClient(opts)
	return h
}

// Connect establishes the broker session. Discovery configs and the
// first state publish happen in the OnConnect handler, so they are
// repeated on every reconnect.
func (h *Hass) Connect() error {
	h.logger.Debug("connecting home assistant MQTT client")
	if token := h.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (h *Hass) Disconnect() {
	h.logger.Info("disconnecting home assistant MQTT client")
	h.publish(h.availabilityTopic(), "offline", true)
	h.client.Disconnect(250)
}

// PublishState pushes the current sensor states and attribute bundles.
func (h *Hass) PublishState() {
	if !h.client.IsConnectionOpen() {
		h.logger.Debug("MQTT not connected, skipping state publish")
		return
	}

	now := time.Now()
	snap := h.data.Snapshot()

	current, _ := snap.CurrentHourPrice(now)
	average, _ := snap.DailyAverage(now)
	forecast, _ := snap.NextHourForecast(now)
	status := snap.StatusText(now)

	h.publish(h.stateTopic(sensorCurrentPrice), formatPrice(current), false)
	h.publish(h.stateTopic(sensorDailyAverage), formatPrice(convert.TwoDecimals(average)), false)
	h.publish(h.stateTopic(sensorNextForecast), formatPrice(forecast), false)
	h.publish(h.stateTopic(sensorStatus), status, false)

	h.publishJson(h.attributesTopic(sensorCurrentPrice), h.currentAttributes(snap, now, current), false)
	h.publishJson(h.attributesTopic(sensorNextForecast), h.forecastAttributes(snap, now), false)
	h.publishJson(h.attributesTopic(sensorStatus), h.statusAttributes(snap, status), false)

	h.logger.Debug("sensor state published",
		slog.String("status", status),
		slog.Float64("currentPrice", current))
}

type currentAttributes struct {
	Average               float64        `json:"average"`
	OffPeak1              float64        `json:"off_peak_1"`
	OffPeak2              float64        `json:"off_peak_2"`
	Peak                  float64        `json:"peak"`
	Min                   float64        `json:"min"`
	Max                   float64        `json:"max"`
	Mean                  float64        `json:"mean"`
	Unit                  string         `json:"unit"`
	Currency              string         `json:"currency"`
	Region                string         `json:"region"`
	LowPrice              bool           `json:"low_price"`
	PricePercentToAverage float64        `json:"price_percent_to_average"`
	Today                 []float64      `json:"today"`
	Tomorrow              []float64      `json:"tomorrow"`
	TomorrowValid         bool           `json:"tomorrow_valid"`
	RawToday              []pzu.RawEntry `json:"raw_today"`
	RawTomorrow           []pzu.RawEntry `json:"raw_tomorrow"`
	LastUpdated           string         `json:"last_updated"`
	Source                string         `json:"source"`
}

func (h *Hass) currentAttributes(snap pzu.Snapshot, now time.Time, current float64) currentAttributes {
	stats, _ := snap.Statistics(now)

	lastUpdated := snap.State.LastSuccess
	if lastUpdated.IsZero() {
		lastUpdated = now
	}

	return currentAttributes{
		Average:               stats.Average,
		OffPeak1:              stats.OffPeak1,
		OffPeak2:              stats.OffPeak2,
		Peak:                  stats.Peak,
		Min:                   stats.Min,
		Max:                   stats.Max,
		Mean:                  stats.Mean,
		Unit:                  "kWh",
		Currency:              "RON",
		Region:                h.region,
		LowPrice:              calc.IsLowPrice(current, stats),
		PricePercentToAverage: calc.PercentToAverage(current, stats),
		Today:                 snap.TodayPrices(now),
		Tomorrow:              snap.TomorrowPrices(now),
		TomorrowValid:         snap.TomorrowValid(now),
		RawToday:              snap.RawToday(now),
		RawTomorrow:           snap.RawTomorrow(now),
		LastUpdated:           lastUpdated.In(hours.MarketLocation()).Format(time.RFC3339),
		Source:                opcom.Source,
	}
}

type forecastEntry struct {
	Timestamp string  `json:"timestamp"`
	Price     float64 `json:"price"`
	Hour      int     `json:"hour"`
}

type forecastAttributes struct {
	ForecastPrices    []forecastEntry `json:"forecast_prices"`
	UnitOfMeasurement string          `json:"unit_of_measurement"`
	Source            string          `json:"source"`
}

func (h *Hass) forecastAttributes(snap pzu.Snapshot, now time.Time) forecastAttributes {
	entries := []forecastEntry{}
	if tomorrow, ok := snap.TomorrowSet(now); ok {
		for _, hp := range tomorrow.Hours {
			entries = append(entries, forecastEntry{
				Timestamp: hours.FormatTimeLocal(hp.Start()),
				Price:     hp.Price,
				Hour:      hp.Hour.LocalHour(),
			})
		}
	}

	return forecastAttributes{
		ForecastPrices:    entries,
		UnitOfMeasurement: priceUnit,
		Source:            opcom.SourceForecast,
	}
}

type statusAttributes struct {
	Icon        string `json:"icon"`
	LastAttempt string `json:"last_attempt,omitempty"`
	LastSuccess string `json:"last_success,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

func (h *Hass) statusAttributes(snap pzu.Snapshot, status string) statusAttributes {
	attrs := statusAttributes{
		Icon:      statusIcon(status),
		LastError: snap.State.LastError,
	}
	if !snap.State.LastAttempt.IsZero() {
		attrs.LastAttempt = hours.FormatTimeLocal(snap.State.LastAttempt)
	}
	if !snap.State.LastSuccess.IsZero() {
		attrs.LastSuccess = hours.FormatTimeLocal(snap.State.LastSuccess)
	}
	return attrs
}

func statusIcon(status string) string {
	switch {
	case strings.Contains(status, "Available"):
		return "mdi:check-circle"
	case strings.Contains(status, "Error"):
		return "mdi:alert-circle"
	case strings.Contains(status, "Pending"):
		return "mdi:clock-outline"
	default:
		return "mdi:help-circle"
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (h *Hass) publish(topic string, payload any, retain bool) {
	token := h.client.Publish(topic, 0, retain, payload)
	if ok := token.WaitTimeout(5 * time.Second); !ok {
		h.logger.Warn("timeout when publishing", slog.String("topic", topic))
	} else if token.Error() != nil {
		h.logger.Error("error when publishing", slog.String("topic", topic), slog.Any("error", token.Error()))
	}
}

func (h *Hass) publishJson(topic string, v any, retain bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("error when encoding payload", slog.String("topic", topic), slog.Any("error", err))
		return
	}
	h.publish(topic, payload, retain)
}
