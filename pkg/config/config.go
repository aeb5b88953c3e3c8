package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	MoySklad MoySkladConfig
	Feed     FeedConfig
	Sync     SyncConfig
	Control  ControlConfig
	DB       DBConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env     string // development, staging, production
	Name    string
	Level   string // trace, debug, info, warn, error
	LogFile string // opcional: ruta de archivo de log además de stdout
}

// HTTPConfig configuración del servidor HTTP de control.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// MoySkladConfig credenciales y parámetros de la API MoySklad (remap 1.2).
// Login/Password vacíos no impiden arrancar el proceso; toda sincronización
// fallará hasta que estén definidos.
type MoySkladConfig struct {
	BaseURL          string
	Login            string
	Password         string
	AttributeID      string // atributo booleano "exportar a Kaspi"
	PriceAttributeID string // atributo opcional con el precio Kaspi directo
	KaspiPriceTypeID string // id del tipo de precio "Каспи" en salePrices
	StockExternal    string // externalCode del almacén del reporte de stock
	StockReportMode  string // "stock-reserve" (canónico) o "quantity" (variante)
	RetryAttempts    int    // reintentos adicionales por operación de red
	RetryDelay       time.Duration
}

// HasCredentials indica si hay credenciales para pedir token.
func (c MoySkladConfig) HasCredentials() bool {
	return c.Login != "" && c.Password != ""
}

// FeedConfig parámetros del catálogo XML generado.
type FeedConfig struct {
	Company    string
	MerchantID string
	StoreID    string // código de punto de venta en <availability storeId=...>
	OutputDir  string
	XMLFile    string
}

// SyncConfig parámetros del ciclo de sincronización.
type SyncConfig struct {
	Interval time.Duration // intervalo entre regeneraciones automáticas
}

// ControlConfig protección opcional de los endpoints /control/*.
// Secret vacío = endpoints abiertos, como en el despliegue original.
type ControlConfig struct {
	JWTSecret string
}

// DBConfig diario de corridas opcional en PostgreSQL.
// Si DatabaseURL está vacío el servicio funciona sin base de datos.
type DBConfig struct {
	DatabaseURL string
}

// Valores heredados del despliegue original.
const (
	DefaultBaseURL = "https://api.moysklad.ru/api/remap/1.2"

	StockReportModePair = "stock-reserve"
	StockReportModeQty  = "quantity"
)

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: MS_LOGIN, MS_PASSWORD, ATTRIBUTE_ID, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:     getString(v, "APP_ENV", "development"),
			Name:    getString(v, "APP_NAME", "kaspi-sync"),
			Level:   getString(v, "LOG_LEVEL", "info"),
			LogFile: getString(v, "LOG_FILE", ""),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 5000),
		},
		MoySklad: MoySkladConfig{
			BaseURL:          getString(v, "MS_BASE_URL", DefaultBaseURL),
			Login:            getString(v, "MS_LOGIN", ""),
			Password:         getString(v, "MS_PASSWORD", ""),
			AttributeID:      getString(v, "ATTRIBUTE_ID", ""),
			PriceAttributeID: getString(v, "PRICE_ATTRIBUTE_ID", ""),
			KaspiPriceTypeID: getString(v, "KASPI_PRICE_TYPE_ID", ""),
			StockExternal:    getString(v, "STOCK_EXTERNAL_CODE", ""),
			StockReportMode:  getString(v, "STOCK_REPORT_MODE", StockReportModePair),
			RetryAttempts:    getInt(v, "RETRY_ATTEMPTS", 2),
			RetryDelay:       time.Duration(getInt(v, "RETRY_DELAY_SECONDS", 15)) * time.Second,
		},
		Feed: FeedConfig{
			Company:    getString(v, "COMPANY", "ИП ВОЗРОЖДЕНИЕ"),
			MerchantID: getString(v, "MERCHANT_ID", "30286450"),
			StoreID:    getString(v, "STORE_ID", "PP1"),
			OutputDir:  getString(v, "OUTPUT_DIR", "docs"),
			XMLFile:    getString(v, "XML_FILE", "kaspi.xml"),
		},
		Sync: SyncConfig{
			Interval: time.Duration(getInt(v, "SYNC_INTERVAL_MINUTES", 60)) * time.Minute,
		},
		Control: ControlConfig{
			JWTSecret: getString(v, "CONTROL_JWT_SECRET", ""),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
		},
	}

	// Variante de reporte desconocida: volvemos al contrato canónico stock/reserve.
	if cfg.MoySklad.StockReportMode != StockReportModePair &&
		cfg.MoySklad.StockReportMode != StockReportModeQty {
		cfg.MoySklad.StockReportMode = StockReportModePair
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
