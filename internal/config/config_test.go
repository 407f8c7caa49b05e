package config

import (
	"os"
	"reflect"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.GRPCAddr != ":9090" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":9090")
	}
	if cfg.BaseDir != "/tmp/chat_server" {
		t.Errorf("BaseDir = %q, want /tmp/chat_server", cfg.BaseDir)
	}
	if cfg.MaxUploadBytes != 32<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, 32<<20)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.ServiceName != "chat-server" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.TelemetryKafkaTopic != "chat-telemetry" {
		t.Errorf("TelemetryKafkaTopic = %q", cfg.TelemetryKafkaTopic)
	}
	if cfg.KafkaGroupID != "chat-telemetry-worker" {
		t.Errorf("KafkaGroupID = %q", cfg.KafkaGroupID)
	}
	if cfg.OTLPInsecure {
		t.Error("OTLPInsecure should default to false")
	}
	if cfg.KafkaBrokersList() != nil {
		t.Error("Kafka should be disabled by default")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("GRPC_ADDR", ":9191")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/chat")
	t.Setenv("JWT_PRIVATE_KEY", "/etc/chat/encoding.pem")
	t.Setenv("JWT_PUBLIC_KEY", "/etc/chat/decoding.pem")
	t.Setenv("BASE_DIR", "/var/lib/chat")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("FILE_POLICY_PATH", "/etc/chat/files.rego")
	t.Setenv("BCRYPT_COST", "14")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
	t.Setenv("LOKI_URL", "http://loki:3100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		HTTPAddr:            ":9999",
		GRPCAddr:            ":9191",
		DatabaseURL:         "postgres://u:p@db/chat",
		JWTPrivateKey:       "/etc/chat/encoding.pem",
		JWTPublicKey:        "/etc/chat/decoding.pem",
		BaseDir:             "/var/lib/chat",
		MaxUploadBytes:      1024,
		FilePolicyPath:      "/etc/chat/files.rego",
		BcryptCost:          14,
		OTLPEndpoint:        "otel:4317",
		OTLPInsecure:        true,
		ServiceName:         "chat-server",
		TelemetryKafkaTopic: "chat-telemetry",
		LokiURL:             "http://loki:3100",
		KafkaGroupID:        "chat-telemetry-worker",
	}
	if !reflect.DeepEqual(*cfg, want) {
		t.Errorf("cfg = %+v\nwant  %+v", *cfg, want)
	}
}

func TestLoad_BcryptCostRange(t *testing.T) {
	testCases := []struct {
		cost    string
		wantErr bool
	}{
		{"3", true},
		{"4", false},
		{"31", false},
		{"32", true},
	}
	for _, tc := range testCases {
		t.Run(tc.cost, func(t *testing.T) {
			os.Clearenv()
			t.Setenv("BCRYPT_COST", tc.cost)
			_, err := Load()
			if (err != nil) != tc.wantErr {
				t.Errorf("Load with BCRYPT_COST=%s: err = %v, wantErr %v", tc.cost, err, tc.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{HTTPAddr: ":8080", BaseDir: "/data", MaxUploadBytes: 1}
	}
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty http addr", func(c *Config) { c.HTTPAddr = " " }, true},
		{"empty base dir", func(c *Config) { c.BaseDir = "" }, true},
		{"zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(&c)
			err := c.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && c.BcryptCost != 12 {
				t.Errorf("BcryptCost = %d, want default 12", c.BcryptCost)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	if (&Config{Env: "Production"}).IsProduction() != true {
		t.Error("Production should be production")
	}
	if (&Config{Env: "development"}).IsProduction() {
		t.Error("development is not production")
	}
	var nilCfg *Config
	if nilCfg.IsProduction() {
		t.Error("nil config is not production")
	}
}

func TestKafkaBrokersList(t *testing.T) {
	testCases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"localhost:9092", []string{"localhost:9092"}},
		{" a:9092 , b:9092,,", []string{"a:9092", "b:9092"}},
		{" , ", []string{}},
	}
	for _, tc := range testCases {
		got := (&Config{KafkaBrokers: tc.in}).KafkaBrokersList()
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("KafkaBrokersList(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
	var nilCfg *Config
	if nilCfg.KafkaBrokersList() != nil {
		t.Error("nil config should return nil")
	}
}
