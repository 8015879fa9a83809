package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lox/pokerrooms/internal/fileutil"
	"github.com/lox/pokerrooms/internal/server"
)

type ConfigCmd struct {
	Init  ConfigInitCmd  `cmd:"" help:"Write a config file with the default settings"`
	Check ConfigCheckCmd `cmd:"" help:"Load and validate a config file"`
}

type ConfigInitCmd struct {
	Path  string `arg:"" default:"pokerrooms.hcl" help:"Where to write the file"`
	Force bool   `short:"f" help:"Overwrite an existing file"`
}

func (c *ConfigInitCmd) Run() error {
	data := server.DefaultServerConfig().Encode()

	write := fileutil.WriteNewFile
	if c.Force {
		write = fileutil.WriteFileAtomic
	}
	if err := write(c.Path, data, 0o644); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s already exists, use --force to replace it", c.Path)
		}
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", c.Path)
	return nil
}

type ConfigCheckCmd struct {
	Path string `arg:"" default:"pokerrooms.hcl" help:"Config file to check"`
}

func (c *ConfigCheckCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	fmt.Fprintf(os.Stdout, "%s is valid, serving on %s\n", c.Path, cfg.GetServerAddress())
	return nil
}
