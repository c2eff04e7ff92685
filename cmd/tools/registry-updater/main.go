// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"ecoscan-relay/internal/common/config"
	ag "ecoscan-relay/internal/workers/analyze-garment"
	"ecoscan-relay/pkg/registry"
)

func main() {
	syncCmd := flag.NewFlagSet("sync", flag.ExitOnError)
	syncPath := syncCmd.String("path", registry.DefaultPath, "Path to registry file")
	configPath := syncCmd.String("config", "", "Config file (defaults to configs/config.yaml lookup)")

	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validatePath := validateCmd.String("path", registry.DefaultPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "sync":
		_ = syncCmd.Parse(os.Args[2:])
		if err := syncRegistry(*syncPath, *configPath); err != nil {
			fmt.Printf("Error syncing registry: %v\n", err)
			os.Exit(1)
		}

	case "validate":
		_ = validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		if err := reg.Validate(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))

	default:
		help()
	}
}

// syncRegistry writes the analyze-garment activity, as currently configured,
// into the registry file.
func syncRegistry(path, configPath string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	reg, err := registry.LoadOrNew(path)
	if err != nil {
		return err
	}

	replaced := reg.Upsert(ag.Activity(ag.LoadConfig(cfg)))
	if err := registry.Save(reg, path); err != nil {
		return err
	}

	action := "Added"
	if replaced {
		action = "Updated"
	}
	fmt.Printf("%s activity %s in %s\n", action, ag.TaskType, path)
	return nil
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  sync      Write the analyze-garment activity into the registry
  validate  Validate the registry file
  help      Show this help message

Examples:
  registry-updater sync -path configs/activity-registry.json
  registry-updater validate -path configs/activity-registry.json`)
}
