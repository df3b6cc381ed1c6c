package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/hupe1980/agentslush/observability"
	"github.com/hupe1980/agentslush/server"
	"github.com/hupe1980/agentslush/topology"
)

var stdout io.Writer = os.Stdout

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RunCmd runs a topology file.
type RunCmd struct {
	File    string            `arg:"" help:"Topology file (YAML or JSON)." type:"existingfile"`
	Input   map[string]string `short:"i" help:"Input kwargs as key=value, merged over the document input."`
	Timeout time.Duration     `help:"Abort the run after this duration (0 = no limit)."`
}

func (c *RunCmd) Run(cli *CLI) error {
	doc, err := topology.Load(c.File)
	if err != nil {
		return err
	}
	if doc.Input == nil {
		doc.Input = map[string]any{}
	}
	for k, v := range c.Input {
		doc.Input[k] = v
	}

	app, err := cli.app(nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	out, runErr := app.RunTopology(ctx, doc)
	if out != nil {
		if err := printJSON(out); err != nil {
			return err
		}
	}
	return runErr
}

// ValidateCmd validates a topology file against the built-in agents.
type ValidateCmd struct {
	File string `arg:"" help:"Topology file (YAML or JSON)." type:"existingfile"`
}

func (c *ValidateCmd) Run(cli *CLI) error {
	doc, err := topology.Load(c.File)
	if err != nil {
		return err
	}

	app, err := cli.app(nil)
	if err != nil {
		return err
	}

	problems := topology.Check(doc, app.Registry())
	if len(problems) == 0 {
		fmt.Fprintf(stdout, "%s: valid %s\n", c.File, doc.Kind)
		return nil
	}

	errs := make([]error, 0, len(problems))
	for _, p := range problems {
		errs = append(errs, errors.New(p))
	}
	return fmt.Errorf("%s is invalid: %w", c.File, errors.Join(errs...))
}

// AgentsCmd lists the built-in agents.
type AgentsCmd struct {
	JSON bool `help:"Print agent metadata as JSON."`
}

func (c *AgentsCmd) Run(cli *CLI) error {
	app, err := cli.app(nil)
	if err != nil {
		return err
	}

	infos := app.Registry().List()
	if c.JSON {
		return printJSON(infos)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\n", info.Name, info.Description)
	}
	return tw.Flush()
}

// ServeCmd starts the HTTP gateway.
type ServeCmd struct {
	Addr       string        `help:"Listen address." default:":8080"`
	RunTimeout time.Duration `name:"run-timeout" help:"Per-run timeout (0 = request lifetime)." default:"60s"`
	Trace      bool          `help:"Export spans to stderr."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, shutdownTracer, err := observability.NewTracerProvider(observability.TracerConfig{
		Enabled:     c.Trace,
		ServiceName: "agentslush",
	})
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return err
	}
	defer func() { _ = metrics.Shutdown(context.Background()) }()

	app, err := cli.app(metrics)
	if err != nil {
		return err
	}

	srv := app.Server(func(o *server.Options) { o.RunTimeout = c.RunTimeout })

	fmt.Fprintf(stdout, "agentslush gateway listening on %s\n", c.Addr)
	return srv.ListenAndServe(ctx, c.Addr)
}

// SchemaCmd prints the JSON Schema of topology documents.
type SchemaCmd struct {
	Compact bool `short:"c" help:"Compact JSON output (no indentation)."`
}

func (c *SchemaCmd) Run() error {
	schema := topologySchema()

	enc := json.NewEncoder(stdout)
	if !c.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(schema)
}

func topologySchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		FieldNameTag:               "yaml",
	}

	schema := reflector.Reflect(&topology.Document{})
	schema.Title = "agentslush topology"
	schema.Description = "Graph, chain or broadcast group definition"
	return schema
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "agentslush version %s\n", version())
	return nil
}

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
	}
	return "dev"
}
