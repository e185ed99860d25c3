package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/invoice-scanner/internal/invoice"
	"github.com/zombor/invoice-scanner/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// recognizerFlags holds the settings for every recognizer backend
type recognizerFlags struct {
	kind          string
	tesseractLang string
	remoteURL     string
	remoteTimeout time.Duration
	remoteRetries uint
	minConfidence float64
	azureEndpoint string
	azureKey      string
	geminiKey     string
	geminiModel   string
	ollamaURL     string
	ollamaModel   string
	preprocess    bool
}

// build constructs the configured recognizer
func (f recognizerFlags) build() (scanning.Recognizer, error) {
	switch f.kind {
	case "tesseract":
		slog.Info("Initializing Tesseract recognizer...", "lang", f.tesseractLang, "preprocess", f.preprocess)
		return scanning.NewTesseract(f.preprocess, strings.Split(f.tesseractLang, "+")...)
	case "remote":
		slog.Info("Initializing remote OCR recognizer...", "url", f.remoteURL)
		return scanning.NewRemote(scanning.RemoteConfig{
			URL:           f.remoteURL,
			Timeout:       f.remoteTimeout,
			Attempts:      f.remoteRetries,
			RetryDelay:    time.Second,
			MinConfidence: f.minConfidence,
			Preprocess:    f.preprocess,
		})
	case "azure":
		slog.Info("Initializing Azure recognizer...", "endpoint", f.azureEndpoint)
		return scanning.NewAzure(f.azureEndpoint, f.azureKey, f.preprocess)
	case "gemini":
		apiKey := f.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, errors.New("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini recognizer...", "model", f.geminiModel)
		return scanning.NewGemini(apiKey, f.geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama recognizer...", "url", f.ollamaURL, "model", f.ollamaModel)
		return scanning.NewOllama(f.ollamaURL, f.ollamaModel)
	case "pdftext":
		slog.Info("Initializing PDF text recognizer...")
		return scanning.NewPDFText(), nil
	default:
		return nil, fmt.Errorf("invalid recognizer type %q: want tesseract, remote, azure, gemini, ollama or pdftext", f.kind)
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: loading .env: %v\n", err)
		os.Exit(1)
	}

	fs := ff.NewFlagSet("invoice-scanner")
	var (
		mode          = fs.StringLong("mode", "serve", "Run mode: 'serve' for the web interface or 'batch' for a directory of images")
		port          = fs.IntLong("port", 8080, "HTTP server port")
		dbPath        = fs.StringLong("db", "invoice-scanner.db", "Database file path")
		storagePath   = fs.StringLong("storage", "./invoices", "Storage directory path")
		inputDir      = fs.StringLong("input", "./images", "Batch mode: directory of invoice images")
		outputDir     = fs.StringLong("output", "./output", "Batch mode: directory for JSON records")
		workers       = fs.IntLong("workers", invoice.DefaultWorkers, "Batch mode: images processed concurrently")
		kind          = fs.StringLong("recognizer", "tesseract", "Recognizer: tesseract, remote, azure, gemini, ollama or pdftext")
		tesseractLang = fs.StringLong("tesseract-lang", "eng", "Tesseract languages, joined with '+'")
		remoteURL     = fs.StringLong("remote-url", "http://localhost:8866/ocr", "Remote OCR service URL")
		remoteTimeout = fs.DurationLong("remote-timeout", 60*time.Second, "Remote OCR request timeout")
		remoteRetries = fs.UintLong("remote-retries", 3, "Remote OCR attempts before giving up")
		minConfidence = fs.Float64Long("min-confidence", 0, "Remote OCR: drop text blocks below this confidence")
		azureEndpoint = fs.StringLong("azure-endpoint", "", "Azure Computer Vision endpoint")
		azureKey      = fs.StringLong("azure-key", "", "Azure Computer Vision subscription key")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, qwen2-vl)")
		noPreprocess  = fs.BoolLong("no-preprocess", "Skip grayscale/threshold cleanup before OCR")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel      = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVOICE_SCANNER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	rf := recognizerFlags{
		kind:          *kind,
		tesseractLang: *tesseractLang,
		remoteURL:     *remoteURL,
		remoteTimeout: *remoteTimeout,
		remoteRetries: *remoteRetries,
		minConfidence: *minConfidence,
		azureEndpoint: *azureEndpoint,
		azureKey:      *azureKey,
		geminiKey:     *geminiKey,
		geminiModel:   *geminiModel,
		ollamaURL:     *ollamaURL,
		ollamaModel:   *ollamaModel,
		preprocess:    !*noPreprocess,
	}
	// Built on first use
	recognizer := scanning.NewShared(rf.build)
	defer recognizer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch *mode {
	case "serve":
		err = serve(ctx, recognizer, *dbPath, *storagePath, *port, invoice.BasicAuth{
			Username: *authUser,
			Password: *authPass,
		})
	case "batch":
		err = batch(ctx, recognizer, *inputDir, *outputDir, *workers)
	default:
		err = fmt.Errorf("invalid mode %q: want serve or batch", *mode)
	}
	if err != nil {
		slog.Error("Exiting", "error", err)
		recognizer.Close()
		os.Exit(1)
	}
}

func serve(ctx context.Context, recognizer scanning.Recognizer, dbPath, storagePath string, port int, auth invoice.BasicAuth) error {
	slog.Info("Initializing database...")
	db, err := invoice.NewBoltDB(dbPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	slog.Info("Initializing storage...")
	store, err := invoice.NewLocalStorage(storagePath)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	server := invoice.NewServer(invoice.NewService(db, recognizer, store), auth)

	addr := fmt.Sprintf(":%d", port)
	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if auth.Username != "" || auth.Password != "" {
		slog.Info("Basic auth enabled", "user", auth.Username)
	}
	return server.Start(ctx, addr)
}

func batch(ctx context.Context, recognizer scanning.Recognizer, inputDir, outputDir string, workers int) error {
	// Extract touches neither the database nor file storage
	b := &invoice.Batch{
		Extractor: invoice.NewService(nil, recognizer, nil),
		OutputDir: outputDir,
		Workers:   workers,
	}

	slog.Info("Processing invoices", "input", inputDir, "output", outputDir, "workers", workers)
	summary, err := b.Run(ctx, inputDir)
	slog.Info("Batch finished", "found", summary.Found, "saved", summary.Saved, "failed", summary.Failed)
	return err
}
