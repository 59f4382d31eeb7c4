package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"orion-collector/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Station polling configuration.
	StationURL       string
	StationTimeout   time.Duration
	PollsPerMinute   int
	PollLeadSeconds  int
	QuickRetries     int
	RetryPolicy      string
	RetryMaxAttempts int
	SensorMap        map[string]string

	// Sink configuration.
	Sink          string
	KafkaBrokers  []string
	KafkaTopic    string
	MQTTBrokerURL string
	MQTTClientID  string
	MQTTTopic     string
	MQTTUsername  string
	MQTTPassword  string

	HTTPAddr        string
	LogLevel        slog.Level
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Retry policies. Resync keeps retrying on the polling grid indefinitely;
// bounded gives up after RetryMaxAttempts consecutive failures.
const (
	RetryPolicyResync  = "resync"
	RetryPolicyBounded = "bounded"
)

// Sinks for assembled records.
const (
	SinkStdout = "stdout"
	SinkKafka  = "kafka"
	SinkMQTT   = "mqtt"
)

// defaultStationPath is where the MicroServer serves its latest sample.
const defaultStationPath = "/tmp/latestsampledata_u.xml"

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	stationURL, err := parseStationURL()
	if err != nil {
		return nil, err
	}

	stationTimeout, err := parseDurationEnv("STATION_TIMEOUT", "4s")
	if err != nil {
		return nil, err
	}

	pollsPerMinute, err := parseIntEnv("POLLS_PER_MINUTE", 4)
	if err != nil {
		return nil, err
	}

	pollLeadSeconds, err := parseIntEnv("POLL_LEAD_SECONDS", 5)
	if err != nil {
		return nil, err
	}

	quickRetries, err := parseIntEnv("QUICK_RETRIES", 3)
	if err != nil {
		return nil, err
	}

	retryMaxAttempts, err := parseIntEnv("RETRY_MAX_ATTEMPTS", 10)
	if err != nil {
		return nil, err
	}

	sensorMap, err := parseSensorMap()
	if err != nil {
		return nil, err
	}

	logLevel, err := parseLogLevel()
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		StationURL:       stationURL,
		StationTimeout:   stationTimeout,
		PollsPerMinute:   pollsPerMinute,
		PollLeadSeconds:  pollLeadSeconds,
		QuickRetries:     quickRetries,
		RetryPolicy:      envOrDefault("RETRY_POLICY", RetryPolicyResync),
		RetryMaxAttempts: retryMaxAttempts,
		SensorMap:        sensorMap,

		Sink:          envOrDefault("SINK", SinkStdout),
		KafkaBrokers:  parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:    envOrDefault("KAFKA_TOPIC", "weather-loop-records"),
		MQTTBrokerURL: envOrDefault("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:  envOrDefault("MQTT_CLIENT_ID", "orion-collector"),
		MQTTTopic:     envOrDefault("MQTT_TOPIC", "orion/loop"),
		MQTTUsername:  os.Getenv("MQTT_USERNAME"),
		MQTTPassword:  os.Getenv("MQTT_PASSWORD"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        logLevel,
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.PollsPerMinute < 1 || cfg.PollsPerMinute > 60 || 60%cfg.PollsPerMinute != 0 {
		return nil, errors.New("POLLS_PER_MINUTE must be between 1 and 60 and divide 60 evenly")
	}
	if cfg.PollLeadSeconds < 1 || cfg.PollLeadSeconds > 59 {
		return nil, errors.New("POLL_LEAD_SECONDS must be between 1 and 59")
	}
	if cfg.QuickRetries < 0 {
		return nil, errors.New("QUICK_RETRIES must not be negative")
	}
	if cfg.RetryPolicy != RetryPolicyResync && cfg.RetryPolicy != RetryPolicyBounded {
		return nil, fmt.Errorf("RETRY_POLICY must be %q or %q", RetryPolicyResync, RetryPolicyBounded)
	}
	if cfg.RetryMaxAttempts < 1 {
		return nil, errors.New("RETRY_MAX_ATTEMPTS must be at least 1")
	}

	switch cfg.Sink {
	case SinkStdout:
	case SinkKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required for the kafka sink")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required for the kafka sink")
		}
	case SinkMQTT:
		if cfg.MQTTBrokerURL == "" {
			return nil, errors.New("MQTT_BROKER_URL is required for the mqtt sink")
		}
		if cfg.MQTTTopic == "" {
			return nil, errors.New("MQTT_TOPIC is required for the mqtt sink")
		}
	default:
		return nil, fmt.Errorf("SINK must be %q, %q or %q", SinkStdout, SinkKafka, SinkMQTT)
	}

	return cfg, nil
}

// parseStationURL resolves the sample document URL. STATION_URL wins when
// set; otherwise the URL is built from STATION_HOST and STATION_PORT with
// the MicroServer's standard document path.
func parseStationURL() (string, error) {
	raw := os.Getenv("STATION_URL")
	if raw == "" {
		host := envOrDefault("STATION_HOST", "192.168.0.50")
		port, err := parseIntEnv("STATION_PORT", 80)
		if err != nil {
			return "", err
		}
		if port < 1 || port > 65535 {
			return "", errors.New("STATION_PORT must be a valid TCP port")
		}
		raw = fmt.Sprintf("http://%s:%d%s", host, port, defaultStationPath)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("invalid STATION_URL %q", raw)
	}
	return raw, nil
}

// parseSensorMap merges SENSOR_MAP entries over the default sensor map.
// Entries take the form output=source, comma separated. Outputs used by the
// record envelope are reserved, and sources must name real station
// measurements so a typo fails at startup instead of silently matching
// nothing.
func parseSensorMap() (map[string]string, error) {
	sensorMap := domain.DefaultSensorMap()

	raw := os.Getenv("SENSOR_MAP")
	if raw == "" {
		return sensorMap, nil
	}

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		out, src, ok := strings.Cut(entry, "=")
		out, src = strings.TrimSpace(out), strings.TrimSpace(src)
		if !ok || out == "" || src == "" {
			return nil, fmt.Errorf("invalid SENSOR_MAP entry %q, want output=source", entry)
		}
		switch out {
		case "dateTime", "usUnits", "rain":
			return nil, fmt.Errorf("SENSOR_MAP output %q is reserved", out)
		}
		if !domain.KnownMeasurement(src) {
			return nil, fmt.Errorf("SENSOR_MAP source %q is not a station measurement", src)
		}
		sensorMap[out] = src
	}
	return sensorMap, nil
}

func parseLogLevel() (slog.Level, error) {
	raw := envOrDefault("LOG_LEVEL", "info")
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", raw)
	}
	return level, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseIntEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}

func parseDurationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
