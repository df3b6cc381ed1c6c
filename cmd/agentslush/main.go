// Command agentslush runs topology documents against a set of built-in demo
// agents and serves them over HTTP.
//
// Usage:
//
//	agentslush run examples/topologies/diamond.yaml --input query="hello"
//	agentslush validate examples/topologies/race.yaml
//	agentslush serve --addr :8080
//	agentslush schema > topology.schema.json
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/hupe1980/agentslush"
	"github.com/hupe1980/agentslush/logging"
	"github.com/hupe1980/agentslush/observability"
)

// CLI defines the command-line interface.
type CLI struct {
	Run      RunCmd      `cmd:"" help:"Run a topology file."`
	Validate ValidateCmd `cmd:"" help:"Validate a topology file."`
	Agents   AgentsCmd   `cmd:"" help:"List built-in agents."`
	Serve    ServeCmd    `cmd:"" help:"Start the HTTP gateway."`
	Schema   SchemaCmd   `cmd:"" help:"Print the JSON Schema of topology documents."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`

	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info" env:"LOG_LEVEL"`
	LogFormat string `help:"Log format (text, json)." default:"text" enum:"text,json" env:"LOG_FORMAT"`
	EnvFile   string `name:"env-file" help:"Load environment variables from this file before running." type:"path"`

	Provider     string `help:"Model provider of the prompt agent (anthropic, openai)." default:"anthropic" enum:"anthropic,openai"`
	Model        string `help:"Model name of the prompt agent (provider default when empty)."`
	RecordMemory bool   `name:"record-memory" help:"Remember agent outputs and surface them as memory echoes."`
}

func (c *CLI) logger() (logging.Logger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    c.LogFormat,
		Output:    os.Stderr,
		Component: "cli",
	}), nil
}

// app builds the façade with the built-in agents registered.
func (c *CLI) app(metrics *observability.Metrics) (*agentslush.AgentSlush, error) {
	logger, err := c.logger()
	if err != nil {
		return nil, err
	}

	app := agentslush.New(func(o *agentslush.Options) {
		o.Logger = logger
		o.Metrics = metrics
		o.RecordMemory = c.RecordMemory
	})

	agents, err := builtinAgents(app, builtinConfig{Provider: c.Provider, Model: c.Model})
	if err != nil {
		return nil, err
	}
	if err := app.Register(agents...); err != nil {
		return nil, err
	}
	return app, nil
}

// loadEnv loads --env-file, or .env when present.
func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("agentslush"),
		kong.Description("Multi-agent execution engine: graphs, chains, broadcast groups."),
		kong.UsageOnError(),
	)

	if err := loadEnv(cli.EnvFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
