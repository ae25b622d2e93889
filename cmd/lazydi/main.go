package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sghaida/lazydi/di"
	"github.com/sghaida/lazydi/internal/logging"
	"github.com/sghaida/lazydi/internal/manifest"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI is the root command configuration with subcommands.
type CLI struct {
	LogLevel  string           `kong:"short='l',help='Log level',enum='trace,debug,info,warn,error',default='warn',env='LAZYDI_LOG_LEVEL'"`
	LogFormat string           `kong:"help='Log format',enum='console,json',default='console',env='LAZYDI_LOG_FORMAT'"`
	Resolve   ResolveCmd       `kong:"cmd,help='Resolve injectables and print them as JSON'"`
	Check     CheckCmd         `kong:"cmd,help='List dependencies the manifest still needs'"`
	Version   kong.VersionFlag `kong:"short='v',help='Show version and exit.'"`
}

// Source selects the manifest and the overrides applied to it.
type Source struct {
	File    string            `kong:"short='f',required,type='existingfile',help='Registry manifest (YAML)'"`
	Set     map[string]string `kong:"short='s',help='Override an injectable (key=value)'"`
	EnvFile []string          `kong:"name='env-file',help='dotenv file with overrides'"`
}

// ResolveCmd resolves keys from a manifest.
type ResolveCmd struct {
	Source `kong:"embed"`
	Keys   []string `kong:"arg,optional,help='Keys to resolve (default: the manifest api)'"`
}

// CheckCmd reports unmet dependencies of a manifest.
type CheckCmd struct {
	Source `kong:"embed"`
}

// streams carries the writers commands print to.
type streams struct {
	out io.Writer
	err io.Writer
}

// Run executes the resolve command.
func (c *ResolveCmd) Run(cli *CLI, s *streams) error {
	log, err := newLogger(cli, s.err)
	if err != nil {
		return err
	}
	p, overrides, err := c.load(log)
	if err != nil {
		return err
	}

	view := p.Provide(overrides)
	keys := make([]di.Key, 0, len(c.Keys))
	for _, k := range c.Keys {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		keys = view.Keys()
	}

	result := make(map[string]any, len(keys))
	for _, k := range keys {
		v, err := view.Resolve(k)
		if err != nil {
			return err
		}
		result[di.KeyName(k)] = v
	}
	log.Info().Int("keys", len(result)).Str("manifest", c.File).Msg("resolved")

	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// Run executes the check command.
func (c *CheckCmd) Run(cli *CLI, s *streams) error {
	log, err := newLogger(cli, s.err)
	if err != nil {
		return err
	}
	p, overrides, err := c.load(log)
	if err != nil {
		return err
	}

	missing := p.Missing(overrides)
	for _, k := range missing {
		fmt.Fprintln(s.out, di.KeyName(k))
	}
	if len(missing) > 0 {
		return &di.MissingDependenciesError{Keys: missing}
	}
	fmt.Fprintln(s.out, "ok")
	return nil
}

// load builds the provider and the overrides; --set wins over env files.
func (src *Source) load(log zerolog.Logger) (*di.Provider, di.Injectables, error) {
	m, err := manifest.Load(src.File)
	if err != nil {
		return nil, nil, err
	}
	p, err := m.Provider(di.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}

	raw := map[string]string{}
	if len(src.EnvFile) > 0 {
		env, err := godotenv.Read(src.EnvFile...)
		if err != nil {
			return nil, nil, fmt.Errorf("env file: %w", err)
		}
		maps.Copy(raw, env)
	}
	maps.Copy(raw, src.Set)

	overrides, err := manifest.Overrides(raw)
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Int("overrides", len(overrides)).Str("manifest", src.File).Msg("manifest loaded")
	return p, overrides, nil
}

func newLogger(cli *CLI, w io.Writer) (zerolog.Logger, error) {
	return logging.New(logging.Config{Level: cli.LogLevel, Format: cli.LogFormat}, w)
}

func run(args []string, stdout, stderr io.Writer, opts ...kong.Option) error {
	var cli CLI
	base := []kong.Option{
		kong.Name("lazydi"),
		kong.Description("Resolve lazy dependency registries declared in YAML"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s) released on %s", version, commit, date),
		},
		kong.Writers(stdout, stderr),
		kong.Bind(&streams{out: stdout, err: stderr}),
	}
	parser, err := kong.New(&cli, append(base, opts...)...)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&cli)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
