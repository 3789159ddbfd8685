// Command policyref analyzes Wikipedia discussion pages for policy,
// guideline and essay mentions. It either serves the analysis API over
// HTTP or exports a single analysis as a spreadsheet.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	oai "github.com/openai/openai-go"

	"github.com/wikilens/policyref"
	"github.com/wikilens/policyref/core/pipeline"
	"github.com/wikilens/policyref/exporter"
	"github.com/wikilens/policyref/helper"
	"github.com/wikilens/policyref/server"
)

const defaultOpenAIModel = "gpt-4o-mini"

func main() {
	// Missing .env is fine, the environment may be set directly
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "server":
		err = runServer(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: policyref <server|export> [flags]")
	fmt.Fprintln(os.Stderr, "  server   serve the analysis API over HTTP")
	fmt.Fprintln(os.Stderr, "  export   analyze one discussion and write a spreadsheet")
}

// newPipeline builds the analysis pipeline from the environment. With
// an OPENAI_API_KEY the model extractor runs first and the pattern
// extractor is the fallback; without one the pattern extractor runs
// alone.
func newPipeline(logger *slog.Logger) *pipeline.Pipeline {
	if os.Getenv("OPENAI_API_KEY") != "" {
		modelName := os.Getenv("OPENAI_MODEL")
		if modelName == "" {
			modelName = defaultOpenAIModel
		}
		client := oai.NewClient()
		p := pipeline.NewPipeline(pipeline.OpenAIExtractor(client, modelName))
		p.SetFallback(pipeline.PatternExtractor())
		logger.Info("Using OpenAI extractor with pattern fallback", "model", modelName)
		return p
	}

	logger.Info("No OPENAI_API_KEY set, using pattern extractor")
	return pipeline.NewPipeline(pipeline.PatternExtractor())
}

// newAnalyzer wires the pipeline to the archive when database
// configuration is present, and runs in-memory otherwise.
func newAnalyzer(logger *slog.Logger, p *pipeline.Pipeline, embeddingDim int) (*policyref.Analyzer, error) {
	if os.Getenv("DB_HOST") == "" {
		logger.Info("No DB_HOST set, running without archive")
		return policyref.New(p), nil
	}

	config, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return nil, err
	}

	if embeddings := os.Getenv("EMBEDDING_DIM"); embeddings != "" {
		embeddingDim, err = strconv.Atoi(embeddings)
		if err != nil {
			return nil, fmt.Errorf("invalid EMBEDDING_DIM: %w", err)
		}
	}

	analyzer, err := policyref.NewWithArchive(config, p, embeddingDim)
	if err != nil {
		return nil, err
	}

	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return nil, fmt.Errorf("create default embedder: %w", err)
	}
	p.SetEmbedder(embedder)

	return analyzer, nil
}

func runServer(args []string) error {
	flags := flag.NewFlagSet("server", flag.ExitOnError)
	port := flags.String("port", "", "port to listen on (default $PORT or 8080)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	logger := slog.New(helper.NewPrettyHandler(os.Stdout, helper.PrettyHandlerOptions{}))

	analyzer, err := newAnalyzer(logger, newPipeline(logger), pipeline.DefaultEmbeddingDim)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	listenPort := *port
	if listenPort == "" {
		listenPort = os.Getenv("PORT")
	}
	if listenPort == "" {
		listenPort = "8080"
	}

	mux := http.NewServeMux()
	server.NewHandler(analyzer, logger).RegisterRoutes(mux)

	logger.Info("Listening", "port", listenPort)
	return http.ListenAndServe(":"+listenPort, mux)
}

func runExport(args []string) error {
	flags := flag.NewFlagSet("export", flag.ExitOnError)
	input := flags.String("input", "", "path to the discussion HTML file (required)")
	textPath := flags.String("text", "", "optional path to the discussion plain text")
	format := flags.String("format", exporter.FormatTSV, "output format: tsv, csv or json")
	output := flags.String("output", "", "output path (default stdout)")
	title := flags.String("title", "", "discussion title stored with the result")
	url := flags.String("url", "", "discussion source URL stored with the result")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *input == "" {
		return fmt.Errorf("-input is required")
	}

	htmlBytes, err := os.ReadFile(*input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	plainText := ""
	if *textPath != "" {
		textBytes, err := os.ReadFile(*textPath)
		if err != nil {
			return fmt.Errorf("read text: %w", err)
		}
		plainText = string(textBytes)
	}

	logger := slog.New(helper.NewPrettyHandler(os.Stderr, helper.PrettyHandlerOptions{}))

	result, err := newPipeline(logger).Analyze(context.Background(), string(htmlBytes), plainText)
	if err != nil {
		return err
	}
	result.Title = *title
	result.SourceURL = *url

	sheet, err := exporter.Format(result, *format)
	if err != nil {
		return err
	}

	if *output == "" {
		fmt.Print(sheet)
		return nil
	}
	return os.WriteFile(*output, []byte(sheet), 0o644)
}
