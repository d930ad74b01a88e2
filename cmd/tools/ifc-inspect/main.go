// cmd/tools/ifc-inspect/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	commonhttp "ifc-api/internal/common/http"
	"ifc-api/internal/common/logger"
	"ifc-api/internal/engine"
	"ifc-api/internal/projector"
	"ifc-api/pkg/registry"

	"github.com/spf13/pflag"
)

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "inspect":
		err = runInspect(os.Args[2:], os.Stdout)
	case "endpoints":
		err = runEndpoints(os.Args[2:])
	case "upload", "get", "remove", "list":
		err = runRemote(os.Args[1], os.Args[2:])
	case "help", "-h", "--help":
		help()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		help()
		os.Exit(1)
	}

	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runInspect opens a local IFC file with the same engine the server uses and
// prints its summary, or the flattened view of one element.
func runInspect(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	guid := flags.StringP("guid", "g", "", "print the element with this GlobalId")
	timeout := flags.Duration("timeout", 30*time.Second, "parse timeout")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("inspect takes exactly one IFC file")
	}
	path := flags.Arg(0)

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cfg := engine.DefaultConfig()
	cfg.ParseWorkers = 1
	cfg.ParseTimeout = *timeout
	e, err := engine.New(cfg, logger.NewNoOpLogger())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	model, err := e.Open(ctx, raw)
	if err != nil {
		return err
	}

	if *guid == "" {
		project, found := e.ProjectName(model)
		header := model.Header()
		summary := map[string]interface{}{
			"file":           path,
			"schema":         model.Schema(),
			"entities":       model.Len(),
			"bytes":          model.Size(),
			"total_elements": e.ProductCount(model),
			"project_name":   project,
			"header": map[string]interface{}{
				"name":                 header.Name,
				"description":          header.Description,
				"timestamp":            header.TimeStamp,
				"author":               header.Author,
				"organization":         header.Organization,
				"preprocessor_version": header.PreprocessorVersion,
				"originating_system":   header.OriginatingSystem,
				"authorization":        header.Authorization,
				"implementation_level": header.ImplementationLevel,
				"schema_identifiers":   header.SchemaIdentifiers,
			},
		}
		if !found {
			summary["project_name"] = "Unknown"
		}
		return printJSON(out, summary)
	}

	el, err := e.LookupByGUID(model, *guid)
	if err != nil {
		return err
	}
	view, degraded := projector.New(e).Project(el)
	if degraded.Any() {
		fmt.Fprintf(os.Stderr, "warning: derived data degraded: %+v\n", degraded)
	}
	return printJSON(out, view)
}

func runEndpoints(args []string) error {
	flags := pflag.NewFlagSet("endpoints", pflag.ContinueOnError)
	path := flags.String("registry", "", "endpoint registry JSON file (default: built in)")
	all := flags.Bool("all", false, "include operational endpoints")
	if err := flags.Parse(args); err != nil {
		return err
	}

	reg := registry.Default()
	if *path != "" {
		var err error
		if reg, err = registry.LoadRegistry(*path); err != nil {
			return err
		}
	}

	if !*all {
		return printJSON(os.Stdout, reg.Catalog())
	}
	return printJSON(os.Stdout, reg.Endpoints)
}

// runRemote drives a running server.
func runRemote(command string, args []string) error {
	flags := pflag.NewFlagSet(command, pflag.ContinueOnError)
	server := flags.StringP("server", "s", "http://localhost:8000", "base URL of the IFC API server")
	timeout := flags.Duration("timeout", 2*time.Minute, "request timeout")
	if err := flags.Parse(args); err != nil {
		return err
	}

	client := commonhttp.NewClient(*timeout).WithBaseURL(*server)
	ctx := context.Background()
	var out interface{}

	switch command {
	case "upload":
		if flags.NArg() != 1 {
			return fmt.Errorf("upload takes exactly one IFC file")
		}
		f, err := os.Open(flags.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		if err := client.PostFile(ctx, "/upload-ifc", "file", filepath.Base(f.Name()), f, &out); err != nil {
			return err
		}
	case "get":
		if flags.NArg() != 2 {
			return fmt.Errorf("get takes a model id and a GUID")
		}
		body := map[string]string{"model_id": flags.Arg(0), "guid": flags.Arg(1)}
		if err := client.PostJSON(ctx, "/get-element-by-guid", body, &out); err != nil {
			return err
		}
	case "remove":
		if flags.NArg() != 1 {
			return fmt.Errorf("remove takes a model id")
		}
		if err := client.Delete(ctx, "/remove-model/"+flags.Arg(0), &out); err != nil {
			return err
		}
	case "list":
		if err := client.GetJSON(ctx, "/models", &out); err != nil {
			return err
		}
	}
	return printJSON(os.Stdout, out)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func help() {
	fmt.Println(`ifc-inspect - IFC model inspection and API client

Usage:
  ifc-inspect inspect [--guid GUID] [--timeout 30s] <file.ifc>
  ifc-inspect endpoints [--registry path] [--all]
  ifc-inspect upload [--server URL] <file.ifc>
  ifc-inspect get [--server URL] <model_id> <guid>
  ifc-inspect remove [--server URL] <model_id>
  ifc-inspect list [--server URL]

Examples:
  ifc-inspect inspect sample.ifc
  ifc-inspect inspect -g 2O2Fr$t4X7Zf8NOew3FLOH sample.ifc
  ifc-inspect upload -s http://localhost:8000 sample.ifc`)
}
