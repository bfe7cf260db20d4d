package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/watchquery/internal/eventbus"
	"github.com/hanpama/watchquery/internal/graphql"
	"github.com/hanpama/watchquery/internal/language"
	"github.com/hanpama/watchquery/internal/observable"
	"github.com/hanpama/watchquery/internal/otel"
	"github.com/hanpama/watchquery/internal/ssr"
	"github.com/hanpama/watchquery/internal/watch"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const rootUsage = `watchquery — watched-query developer tools

USAGE:
  watchquery <command> [flags]

COMMANDS:
  check            Parse query documents and verify they are watchable
  key              Print the render-pass registry key for a query
  watch            Replay a watch lifecycle against an in-memory engine
  help             Show help for any command
`

const checkUsage = `check FLAGS:
  <file>...        Query documents to verify. Exits non-zero on the first
                   document that fails to parse or is not a query operation.
`

const keyUsage = `key FLAGS:
  -query <file>          Query document (required)
  -variables <json>      Variables as a JSON object
  -fetch-policy <name>   Fetch policy included in the key (default: cache-first)
`

const watchUsage = `watch FLAGS:
  -query <file>          Query document (required)
  -variables <json>      Variables as a JSON object
  -data <file>           JSON payload pushed as the settled result
  -error <message>       Push an error instead of data
  -otel.endpoint <addr>  OTLP collector endpoint
  -otel.service <name>   OpenTelemetry service name (default: watchquery)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("watchquery", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "check":
		return cmdCheck(cmdArgs)
	case "key":
		return cmdKey(cmdArgs)
	case "watch":
		return cmdWatch(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "check":
		fmt.Print(checkUsage)
	case "key":
		fmt.Print(keyUsage)
	case "watch":
		fmt.Print(watchUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdCheck(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, checkUsage)
		return fmt.Errorf("no documents given")
	}
	for _, file := range args {
		doc, err := loadDocument(file)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if err := language.VerifyOperationType(doc, language.Query); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		name := language.OperationName(doc)
		if name == "" {
			name = "(anonymous)"
		}
		fmt.Printf("%s: %s ok\n", file, name)
	}
	return nil
}

func cmdKey(args []string) error {
	queryFile := ""
	variablesJSON := ""
	policy := string(observable.FetchPolicyCacheFirst)

	fs := flag.NewFlagSet("key", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&queryFile, "query", queryFile, "Query document")
	fs.StringVar(&variablesJSON, "variables", variablesJSON, "Variables as a JSON object")
	fs.StringVar(&policy, "fetch-policy", policy, "Fetch policy included in the key")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, keyUsage)
		return err
	}
	if queryFile == "" {
		fmt.Fprint(os.Stderr, keyUsage)
		return fmt.Errorf("-query is required")
	}

	doc, err := loadDocument(queryFile)
	if err != nil {
		return fmt.Errorf("%s: %w", queryFile, err)
	}
	variables, err := parseVariables(variablesJSON)
	if err != nil {
		return err
	}
	fmt.Println(ssr.CanonicalKey(doc, variables, observable.FetchPolicy(policy)))
	return nil
}

func cmdWatch(args []string) error {
	queryFile := ""
	variablesJSON := ""
	dataFile := ""
	errMessage := ""
	otelEndpoint := ""
	otelService := "watchquery"

	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&queryFile, "query", queryFile, "Query document")
	fs.StringVar(&variablesJSON, "variables", variablesJSON, "Variables as a JSON object")
	fs.StringVar(&dataFile, "data", dataFile, "JSON payload pushed as the settled result")
	fs.StringVar(&errMessage, "error", errMessage, "Push an error instead of data")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, watchUsage)
		return err
	}
	if queryFile == "" {
		fmt.Fprint(os.Stderr, watchUsage)
		return fmt.Errorf("-query is required")
	}

	doc, err := loadDocument(queryFile)
	if err != nil {
		return fmt.Errorf("%s: %w", queryFile, err)
	}
	variables, err := parseVariables(variablesJSON)
	if err != nil {
		return err
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	ctx := context.Background()
	client := observable.NewMockClient()
	d := watch.New(watch.Options{Document: doc, Variables: variables}, func() {})

	snap, err := d.Execute(ctx, client)
	if err != nil {
		return err
	}
	unmount := d.AfterExecute(ctx)
	printSnapshot(snap)

	q := client.LastQuery()
	switch {
	case errMessage != "":
		q.PushError(graphql.ErrorFrom(gqlerror.List{&gqlerror.Error{Message: errMessage}}))
	case dataFile != "":
		raw, err := os.ReadFile(dataFile)
		if err != nil {
			return err
		}
		var data map[string]any
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("%s: %w", dataFile, err)
		}
		q.Resolve(data)
	default:
		q.Resolve(map[string]any{})
	}

	snap, err = d.Execute(ctx, client)
	if err != nil {
		return err
	}
	d.AfterExecute(ctx)
	printSnapshot(snap)

	unmount()
	d.Cleanup()
	if otelEndpoint != "" {
		// let the span batcher flush before shutdown
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}

func loadDocument(file string) (*language.QueryDocument, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return language.ParseQuery(string(src))
}

func parseVariables(s string) (map[string]any, error) {
	if s == "" {
		return nil, nil
	}
	var variables map[string]any
	if err := json.Unmarshal([]byte(s), &variables); err != nil {
		return nil, fmt.Errorf("invalid -variables: %w", err)
	}
	return variables, nil
}

func printSnapshot(snap watch.Snapshot) {
	out := map[string]any{
		"loading":       snap.Loading,
		"networkStatus": snap.NetworkStatus.String(),
	}
	if snap.Data != nil {
		out["data"] = snap.Data
	}
	if snap.Error != nil {
		out["error"] = snap.Error.Error()
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Printf("marshal snapshot: %v", err)
		return
	}
	fmt.Println(string(b))
}
