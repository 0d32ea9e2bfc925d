// Command layercheck enforces the dependency rule between module layers:
// domain must not import services, services must not import presentation or
// infrastructure, and so on outward.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/roblaszczak/go-cleanarch/cleanarch"
	"gopkg.in/yaml.v3"
)

type config struct {
	Root              string   `yaml:"root"`
	IgnoreTests       bool     `yaml:"ignore_tests"`
	IgnorePackages    []string `yaml:"ignore_packages"`
	AllowedViolations []string `yaml:"allow_violations"`
	Aliases           struct {
		Domain         []string `yaml:"domain"`
		Application    []string `yaml:"application"`
		Interfaces     []string `yaml:"interfaces"`
		Infrastructure []string `yaml:"infrastructure"`
	} `yaml:"aliases"`
}

var (
	defaultDomainAliases         = []string{"domain", "aggregates", "entities"}
	defaultApplicationAliases    = []string{"services"}
	defaultInterfacesAliases     = []string{"presentation"}
	defaultInfrastructureAliases = []string{"infrastructure"}
)

func main() {
	var (
		configPath = flag.String("config", ".gocleanarch.yml", "config file path")
		debug      = flag.Bool("debug", false, "enable go-cleanarch debug logging")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("read config: %v\n", err)
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		log.Fatalf("resolve root: %v\n", err)
	}
	if *debug {
		cleanarch.Log.SetOutput(os.Stderr)
	}

	validator := cleanarch.NewValidator(layerAliases(cfg))
	ok, errs, err := validator.Validate(root, cfg.IgnoreTests, cfg.IgnorePackages)
	if err != nil {
		log.Fatalf("go-cleanarch: %v\n", err)
	}

	var failed int
	for _, validationErr := range errs {
		msg := validationErr.Error()
		if allowed(msg, cfg.AllowedViolations) {
			continue
		}
		failed++
		log.Println(msg)
	}
	if !ok && failed > 0 {
		log.Printf("layer check failed: %d violations\n", failed)
		os.Exit(1)
	}
	log.Println("layer check passed")
}

func loadConfig(path string) (*config, error) {
	cfg := &config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse yaml")
		}
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	return cfg, nil
}

func layerAliases(cfg *config) map[string]cleanarch.Layer {
	aliases := map[string]cleanarch.Layer{}
	applyAliases(aliases, cfg.Aliases.Domain, defaultDomainAliases, cleanarch.LayerDomain)
	applyAliases(aliases, cfg.Aliases.Application, defaultApplicationAliases, cleanarch.LayerApplication)
	applyAliases(aliases, cfg.Aliases.Interfaces, defaultInterfacesAliases, cleanarch.LayerInterfaces)
	applyAliases(aliases, cfg.Aliases.Infrastructure, defaultInfrastructureAliases, cleanarch.LayerInfrastructure)
	return aliases
}

func applyAliases(dst map[string]cleanarch.Layer, custom []string, defaults []string, layer cleanarch.Layer) {
	candidates := defaults
	if len(custom) > 0 {
		candidates = custom
	}
	for _, alias := range candidates {
		if alias = strings.TrimSpace(alias); alias != "" {
			dst[alias] = layer
		}
	}
}

func allowed(msg string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern != "" && strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
