package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/open-rsc/openrsc/internal/config"
	"github.com/open-rsc/openrsc/internal/publish"
	"github.com/open-rsc/openrsc/pkg/directive"
)

func publishCmd() *cobra.Command {
	var (
		root   string
		bucket string
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload tagged modules and the manifest to S3",
		Long: `Upload every module in the manifest, then the manifest itself,
to the configured bucket. Run 'openrsc tag' first.

Credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
AWS_SESSION_TOKEN.

Examples:
  openrsc publish
  openrsc publish --bucket=assets --prefix=v2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if bucket != "" {
				cfg.Publish.Bucket = bucket
			}
			if prefix != "" {
				cfg.Publish.Prefix = prefix
			}
			if err := cfg.ValidatePublish(); err != nil {
				return err
			}

			client := publish.NewS3Client(publish.ClientOptions{
				Region:   cfg.Publish.Region,
				Endpoint: cfg.Publish.Endpoint,
			})
			store := publish.NewS3Store(client, cfg.Publish.Bucket)

			report, err := runPublish(cmd.Context(), cfg, store, slog.Default())
			if err != nil {
				return err
			}
			success("Published %d objects (%d bytes) to s3://%s", len(report.Keys), report.Bytes, cfg.Publish.Bucket)
			return nil
		},
	}

	cmd.Flags().StringVarP(&root, "root", "r", "", "Project directory (default: nearest with a configuration)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "Target bucket (default from openrsc.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from openrsc.json)")
	return cmd
}

func runPublish(ctx context.Context, cfg *config.Config, store publish.ObjectStore, logger *slog.Logger) (*publish.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	manifest, err := directive.ReadManifest(cfg.ManifestPath())
	if err != nil {
		return nil, err
	}
	p := publish.New(store, publish.Options{
		Root:   cfg.RootDir(),
		Output: cfg.OutputPath(),
		Prefix: cfg.Publish.Prefix,
		Logger: logger,
	})
	return p.Publish(ctx, manifest)
}
