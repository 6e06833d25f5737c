/*
Copyright 2025 Lumina Contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Main entrypoint for costcharts.
//
// Coverage: Excluded - wiring only, the pipeline is tested in internal/pipeline

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/nextdoor/costcharts/internal/cache"
	"github.com/nextdoor/costcharts/internal/pipeline"
	"github.com/nextdoor/costcharts/internal/preview"
	"github.com/nextdoor/costcharts/pkg/aws"
	"github.com/nextdoor/costcharts/pkg/config"
	"github.com/nextdoor/costcharts/pkg/metrics"
	"github.com/nextdoor/costcharts/pkg/render"
)

var setupLog = ctrl.Log.WithName("setup")

var logLevels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error during analysis: %v\n", err)
		fmt.Fprintln(os.Stderr, "\nMake sure you have:")
		fmt.Fprintln(os.Stderr, "1. AWS credentials configured (aws configure)")
		fmt.Fprintln(os.Stderr, "2. IAM permission ce:GetCostAndUsage for Cost Explorer")
		fmt.Fprintln(os.Stderr, "3. Cost Explorer enabled in your AWS account")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string
	opts := zap.Options{}

	cmd := &cobra.Command{
		Use:   "costcharts",
		Short: "Chart daily AWS costs by purchase type",
		Long: "costcharts queries AWS Cost Explorer for daily cost (BlendedCost by default) grouped by\n" +
			"purchase type, prints a summary, and writes a PNG chart and an interactive HTML chart.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env file is normal.
			_ = godotenv.Load()

			if configFile == "" {
				configFile = os.Getenv("COSTCHARTS_CONFIG_PATH")
			}
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}

			if opts.Level == nil {
				opts.Level = logLevels[cfg.LogLevel]
			}
			ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

			return run(ctrl.SetupSignalHandler(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configFile, "config", "",
		"Path to a YAML configuration file. Can also be set with COSTCHARTS_CONFIG_PATH.")
	f.Bool("headless", false, "Only save the charts; do not serve them for viewing")
	f.String("profile", "", "AWS profile to use (default: the default credential chain)")
	f.Int("months", config.DefaultMonths, "Number of months of history to fetch")
	f.String("output-prefix", config.DefaultOutputPrefix, "Prefix for output file names")
	f.String("output-dir", ".", "Directory to write output files to")
	f.String("service", aws.DefaultService, "Cost Explorer SERVICE dimension value to filter on")
	f.String("metric", aws.DefaultMetric, "Cost metric to chart")
	f.String("region", aws.CostExplorerRegion, "Region for Cost Explorer and account lookups")
	f.String("endpoint-url", "", "Override the AWS endpoint (LocalStack)")
	f.Int("max-retries", config.DefaultMaxRetries, "Maximum attempts per AWS API call")
	f.String("start", "", "First day to include, YYYY-MM-DD (overrides --months)")
	f.String("end", "", "Day after the last day to include, YYYY-MM-DD (default: today)")
	f.Int("dpi", config.DefaultDPI, "Resolution of the PNG chart")
	f.StringSlice("export", nil, "Also export the daily table as csv, json or yaml")
	f.Bool("commitments", false, "Include active Savings Plans and Reserved Instances in the summary")
	f.StringSlice("regions", nil, "Regions to query for Reserved Instances")
	f.String("cache-redis-url", "", "Redis URL for caching Cost Explorer responses")
	f.String("cache-ttl", config.DefaultCacheTTL.String(), "How long cached responses stay valid")
	f.String("metrics-textfile", "", "Write run metrics to this node_exporter textfile")
	f.String("pushgateway-url", "", "Push run metrics to this Prometheus Pushgateway")
	f.String("s3-bucket", "", "Upload output files to this S3 bucket")
	f.String("s3-prefix", "", "Key prefix for uploaded files")
	f.String("preview-addr", config.DefaultPreviewAddress, "Address to serve charts on when not headless")
	f.String("log-level", "info", "Log level: debug, info, warn or error")

	goFlags := flag.NewFlagSet("zap", flag.ExitOnError)
	opts.BindFlags(goFlags)
	f.AddGoFlagSet(goFlags)

	return cmd
}

// run executes one report and, unless headless, serves the charts until ctx
// is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	awsClient, err := aws.NewClient(ctx, aws.ClientConfig{
		Profile:     cfg.Profile,
		Region:      cfg.Region,
		MaxRetries:  cfg.MaxRetries,
		HTTPTimeout: cfg.GetHTTPTimeout(),
		EndpointURL: cfg.EndpointURL,
	})
	if err != nil {
		return fmt.Errorf("unable to create AWS client: %w", err)
	}
	setupLog.V(1).Info("created AWS client", "profile", cfg.Profile, "region", cfg.Region)

	var responseCache cache.ResponseCache = cache.NopCache{}
	if cfg.Cache.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, cfg.GetCacheTTL())
		if err != nil {
			setupLog.Error(err, "response cache unavailable, continuing without it")
		} else {
			defer func() { _ = redisCache.Close() }()
			responseCache = redisCache
			setupLog.Info("using redis response cache", "ttl", cfg.GetCacheTTL().String())
		}
	}

	registry := prometheus.NewRegistry()
	runner := &pipeline.Runner{
		AWSClient: awsClient,
		Config:    cfg,
		Cache:     responseCache,
		Metrics:   metrics.NewMetrics(registry),
		Gatherer:  registry,
		Log:       ctrl.Log.WithName("pipeline"),
	}

	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.Headless {
		fmt.Printf("\nHeadless mode: Charts saved to %s and %s\n", res.Artifacts[0], res.Artifacts[1])
		fmt.Println("\nAnalysis complete!")
		return nil
	}

	names := make([]string, 0, len(res.Artifacts))
	for _, a := range res.Artifacts {
		names = append(names, filepath.Base(a))
	}
	title := render.NewChartInfo(res.Account, cfg.Service, cfg.Metric).Title()
	srv := preview.NewServer(cfg.OutputDir, title, names, ctrl.Log.WithName("preview"))
	return srv.ListenAndServe(ctx, cfg.Preview.BindAddress)
}
