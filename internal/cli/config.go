package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/capmap/pkg/errors"
	"github.com/matzehuels/capmap/pkg/layout"
	"github.com/matzehuels/capmap/pkg/pipeline"
)

// configFile is the on-disk form of --config:
//
//	title = "Airport"
//
//	[layout]
//	padding_size = 0.2
//	base_width = 2.0
type configFile struct {
	Title  string        `toml:"title"`
	Layout layout.Config `toml:"layout"`
}

// layoutField copies one field between configs.
type layoutField func(dst *layout.Config, src layout.Config)

// layoutFlagFields maps every sizing flag to the field it sets, so values
// from --config can be overridden flag by flag.
var layoutFlagFields = map[string]layoutField{
	"padding":          func(d *layout.Config, s layout.Config) { d.PaddingSize = s.PaddingSize },
	"max-depth":        func(d *layout.Config, s layout.Config) { d.MaxDepth = s.MaxDepth },
	"base-width":       func(d *layout.Config, s layout.Config) { d.BaseWidth = s.BaseWidth },
	"base-height":      func(d *layout.Config, s layout.Config) { d.BaseHeight = s.BaseHeight },
	"start-x":          func(d *layout.Config, s layout.Config) { d.StartX = s.StartX },
	"start-y":          func(d *layout.Config, s layout.Config) { d.StartY = s.StartY },
	"level-spacing":    func(d *layout.Config, s layout.Config) { d.LevelSpacing = s.LevelSpacing },
	"max-search-depth": func(d *layout.Config, s layout.Config) { d.MaxSearchDepth = s.MaxSearchDepth },
}

// layoutFlags binds the sizing flags shared by layout and render.
type layoutFlags struct {
	opts       *pipeline.Options
	configPath string
}

func bindLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) *layoutFlags {
	lf := &layoutFlags{opts: opts}
	cfg := &opts.Config

	f := cmd.Flags()
	f.StringVar(&lf.configPath, "config", "", "TOML file with a [layout] table (flags override it)")
	f.Float64Var(&cfg.PaddingSize, "padding", cfg.PaddingSize, "padding unit between and around shapes")
	f.IntVar(&cfg.MaxDepth, "max-depth", cfg.MaxDepth, "expected tree depth (0 derives it from the hierarchy)")
	f.Float64Var(&cfg.BaseWidth, "base-width", cfg.BaseWidth, "width of an unresized shape")
	f.Float64Var(&cfg.BaseHeight, "base-height", cfg.BaseHeight, "height of an unresized shape")
	f.Float64Var(&cfg.StartX, "start-x", cfg.StartX, "horizontal offset of every leaf")
	f.Float64Var(&cfg.StartY, "start-y", cfg.StartY, "y of level 0")
	f.Float64Var(&cfg.LevelSpacing, "level-spacing", cfg.LevelSpacing, "vertical distance added per level")
	f.IntVar(&cfg.MaxSearchDepth, "max-search-depth", cfg.MaxSearchDepth, "bound on level lookups")
	f.BoolVar(&opts.Parallel, "parallel", opts.Parallel, "compute leaf geometry concurrently")
	f.StringVar(&opts.Title, "title", opts.Title, "document title")
	return lf
}

// apply merges --config under the explicitly set flags.
func (lf *layoutFlags) apply(cmd *cobra.Command) error {
	if lf.configPath != "" {
		file, err := loadConfigFile(lf.configPath)
		if err != nil {
			return err
		}
		merged := file.Layout
		for name, copyField := range layoutFlagFields {
			if cmd.Flags().Changed(name) {
				copyField(&merged, lf.opts.Config)
			}
		}
		lf.opts.Config = merged
		if !cmd.Flags().Changed("title") && file.Title != "" {
			lf.opts.Title = file.Title
		}
	}
	return lf.opts.Config.Validate()
}

// loadConfigFile decodes path on top of the default sizing values.
func loadConfigFile(path string) (configFile, error) {
	file := configFile{Layout: layout.DefaultConfig()}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return configFile{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := file.Layout.Validate(); err != nil {
		return configFile{}, fmt.Errorf("config %s: %w", path, err)
	}
	return file, nil
}
