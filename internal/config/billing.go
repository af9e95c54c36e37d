package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig holds the tunable billing behavior: document numbering and
// receivable aging buckets for dashboards.
type BillingConfig struct {
	Numbering            NumberingConfig `mapstructure:"numbering"`
	DefaultPaymentMethod string          `mapstructure:"defaultPaymentMethod"`
	AgingBuckets         []AgingBucket   `mapstructure:"agingBuckets"`
}

type NumberingConfig struct {
	InvoicePrefix       string `mapstructure:"invoicePrefix"`
	ReturnPrefix        string `mapstructure:"returnPrefix"`
	PurchaseOrderPrefix string `mapstructure:"purchaseOrderPrefix"`
	SequenceWidth       int    `mapstructure:"sequenceWidth"`
}

type AgingBucket struct {
	Label   string `mapstructure:"label"`
	MinDays int    `mapstructure:"minDays"`
	MaxDays *int   `mapstructure:"maxDays"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		Numbering: NumberingConfig{
			InvoicePrefix:       "INV",
			ReturnPrefix:        "RET",
			PurchaseOrderPrefix: "PO",
			SequenceWidth:       4,
		},
		DefaultPaymentMethod: "cash",
		AgingBuckets: []AgingBucket{
			{Label: "0-30", MinDays: 0, MaxDays: intPtr(30)},
			{Label: "31-60", MinDays: 31, MaxDays: intPtr(60)},
			{Label: "60+", MinDays: 61, MaxDays: nil},
		},
	}
}

func intPtr(v int) *int { return &v }

// BillingConfigHolder serves the current billing config and hot-reloads it
// when the file changes.
type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/shopbill/config")
	v.AddConfigPath("/etc/shopbill")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SHOPBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		v.SetDefault("billing.numbering", defaults.Numbering)
		v.SetDefault("billing.defaultPaymentMethod", defaults.DefaultPaymentMethod)
		v.SetDefault("billing.agingBuckets", defaults.AgingBuckets)
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	fillBillingDefaults(&cfg, defaults)
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		fillBillingDefaults(&updated, defaults)
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfig wraps a fixed config with no file watching.
func NewStaticBillingConfig(cfg BillingConfig) *BillingConfigHolder {
	h := &BillingConfigHolder{}
	h.current.Store(cfg)
	return h
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func fillBillingDefaults(cfg *BillingConfig, defaults BillingConfig) {
	if cfg.Numbering.InvoicePrefix == "" {
		cfg.Numbering.InvoicePrefix = defaults.Numbering.InvoicePrefix
	}
	if cfg.Numbering.ReturnPrefix == "" {
		cfg.Numbering.ReturnPrefix = defaults.Numbering.ReturnPrefix
	}
	if cfg.Numbering.PurchaseOrderPrefix == "" {
		cfg.Numbering.PurchaseOrderPrefix = defaults.Numbering.PurchaseOrderPrefix
	}
	if cfg.Numbering.SequenceWidth <= 0 {
		cfg.Numbering.SequenceWidth = defaults.Numbering.SequenceWidth
	}
	if cfg.DefaultPaymentMethod == "" {
		cfg.DefaultPaymentMethod = defaults.DefaultPaymentMethod
	}
	if len(cfg.AgingBuckets) == 0 {
		cfg.AgingBuckets = defaults.AgingBuckets
	}
}

func validateBillingConfig(cfg BillingConfig) error {
	if len(cfg.AgingBuckets) == 0 {
		return errors.New("billing.agingBuckets cannot be empty")
	}
	for _, b := range cfg.AgingBuckets {
		if b.MaxDays != nil && *b.MaxDays < b.MinDays {
			return errors.New("billing.agingBuckets bucket range inverted")
		}
	}
	return nil
}
