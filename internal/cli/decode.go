package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gravitational/trace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"sfdecode/internal/journal"
	"sfdecode/internal/logger"
	"sfdecode/internal/metrics"
	"sfdecode/internal/objectstore"
	"sfdecode/internal/sink"
	"sfdecode/internal/statusserver"
)

func newDecodeCmd(configPath *string, verbose *bool) *cobra.Command {
	var outputBucket string
	var outputPrefix string

	cmd := &cobra.Command{
		Use:   "decode <source>",
		Short: "Decode every journal blob under a source prefix to JSONL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.Context(), *configPath, *verbose, args[0], outputBucket, outputPrefix)
		},
	}
	cmd.Flags().StringVar(&outputBucket, "output-bucket", "", "local directory for JSONL output (also set as output.bucket; JSONL is only written to a local output store)")
	cmd.Flags().StringVar(&outputPrefix, "output-prefix", "", "key/path prefix for JSONL output (default decoded/)")
	return cmd
}

func runDecode(ctx context.Context, configPath string, verbose bool, source, outputBucket, outputPrefix string) error {
	cfg, err := loadConfig(configPath, verbose)
	if err != nil {
		return err
	}
	if outputBucket != "" {
		cfg.Output.Bucket = outputBucket
		cfg.Output.LocalRoot = outputBucket
	}
	if outputPrefix != "" {
		cfg.Output.Prefix = outputPrefix
	}

	cleanup, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	logger.Info("starting decode: %s", cfg.Summary())

	srcStore, err := buildStore(ctx, cfg.Source.Type, cfg.Source.Bucket, cfg.Source.Region, cfg.Source.LocalRoot)
	if err != nil {
		return trace.Wrap(err, "setting up source store")
	}
	dstStore, err := buildStore(ctx, cfg.Output.Type, cfg.Output.Bucket, cfg.Output.Region, cfg.Output.LocalRoot)
	if err != nil {
		return trace.Wrap(err, "setting up output store")
	}

	objects, err := srcStore.List(ctx, source)
	if err != nil {
		return trace.Wrap(err, "listing journals under %q", source)
	}
	if len(objects) == 0 {
		logger.Warn("no journal blobs found under %q", source)
	}

	recorders := multiRecorder{metrics.NewRecorder(prometheus.DefaultRegisterer)}
	if cfg.Metrics.Enabled {
		metricsSrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: promhttp.Handler()}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server: %v", err)
			}
		}()
		logger.Info("metrics server listening on %s", cfg.Metrics.Addr)
		go func() {
			<-ctx.Done()
			_ = metricsSrv.Shutdown(context.Background())
		}()
	}
	if cfg.StatusServer.Enabled {
		statusSrv := statusserver.New(cfg.StatusServer.Addr)
		statusCtx, stopStatus := context.WithCancel(ctx)
		defer stopStatus()
		go func() {
			if err := statusSrv.ListenAndServe(statusCtx); err != nil {
				logger.Error("status server: %v", err)
			}
		}()
		logger.Info("status server listening on %s", cfg.StatusServer.Addr)
		recorders = append(recorders, statusSrv.Recorder())
	}

	orch := &journal.Orchestrator{Concurrency: cfg.Concurrency, Recorder: recorders}
	if cfg.RateLimitRPS > 0 {
		orch.Limiter = newRateLimiter(cfg.RateLimitRPS)
	}

	jobs := make([]journal.Job, len(objects))
	for i, obj := range objects {
		obj := obj
		jobs[i] = journal.Job{
			Name: obj.Key,
			Open: func(ctx context.Context) (io.ReadCloser, error) {
				return srcStore.Open(ctx, obj.Key)
			},
		}
	}

	results := orch.Run(ctx, jobs, sinkFactoryFor(dstStore, cfg.Output.Prefix))

	var fatal int
	var totalEvents int64
	for _, res := range results {
		if res.Err != nil {
			fatal++
			logger.Error("journal %s: infrastructure error: %v", res.Name, res.Err)
			continue
		}
		totalEvents += res.Summary.EventsDecoded
		if res.Summary.Failed {
			logger.Warn("journal %s: events=%d final_status=%s offset=%d",
				res.Name, res.Summary.EventsDecoded, res.Summary.FailureKind, res.Summary.FailureOffset)
		} else {
			logger.Info("journal %s: events=%d final_status=ok", res.Name, res.Summary.EventsDecoded)
		}
	}
	logger.Info("decode complete: journals=%d events=%d infra_errors=%d", len(results), totalEvents, fatal)

	if fatal > 0 {
		return fmt.Errorf("sfdecode: %d of %d journals failed to open or sink", fatal, len(results))
	}
	return nil
}

// buildStore resolves an objectstore.Store for the given backend type.
func buildStore(ctx context.Context, kind, bucket, region, localRoot string) (objectstore.Store, error) {
	switch kind {
	case "s3":
		opts := []func(*awsconfig.LoadOptions) error{}
		if region != "" {
			opts = append(opts, awsconfig.WithRegion(region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, trace.Wrap(err, "loading AWS credentials")
		}
		client := s3.NewFromConfig(awsCfg)
		return objectstore.NewS3Store(bucket, client), nil
	case "local":
		return objectstore.NewLocalStore(localRoot), nil
	default:
		return nil, fmt.Errorf("sfdecode: unknown store type %q", kind)
	}
}

// sinkFactoryFor builds a journal.SinkFactory that writes one JSONL
// file per journal, at the journal's key path with its extension
// swapped for .jsonl, under dstStore rooted at outputPrefix. Only a
// LocalStore output is supported; any other store fails every journal.
func sinkFactoryFor(dstStore objectstore.Store, outputPrefix string) journal.SinkFactory {
	return func(jobName string) (journal.Sink, func() error, error) {
		local, ok := dstStore.(*objectstore.LocalStore)
		if !ok {
			return nil, nil, fmt.Errorf("sfdecode: output store does not support direct writes; stage output locally and sync separately")
		}
		outPath := filepath.Join(local.Root, outputPrefix, jsonlName(jobName))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return nil, nil, trace.Wrap(err, "creating output directory")
		}
		f, err := os.Create(outPath)
		if err != nil {
			return nil, nil, trace.Wrap(err, "creating %s", outPath)
		}
		writer := sink.NewJSONLWriter(f)
		return writer, f.Close, nil
	}
}

func jsonlName(key string) string {
	name := filepath.FromSlash(path.Clean("/" + key))
	name = strings.TrimSuffix(name, ".zst")
	name = strings.TrimSuffix(name, ".journal")
	return name + ".jsonl"
}
