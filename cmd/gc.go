package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Harsh275110/StoreIt/filestore"
	"github.com/Harsh275110/StoreIt/models"
	"github.com/Harsh275110/StoreIt/scheduler"
)

// NewGCCmd creates the gc command, which runs one orphan-blob sweep and
// exits. The running server also sweeps on a schedule; this exists for
// one-off cleanup and cron-from-outside setups.
func NewGCCmd(dataDirectory *string) *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Delete blobs no file record references",
		Run: func(cmd *cobra.Command, args []string) {
			withDB(dataDirectory, cmd, func() error {
				config, err := filestore.ParseBlobConfigFromEnv()
				if err != nil {
					return err
				}
				config.ApplyDefaults(*dataDirectory)
				if err := config.Validate(); err != nil {
					return err
				}
				backend, err := config.CreateBackend()
				if err != nil {
					return err
				}

				job := &scheduler.SweeperJob{
					Blobs:      filestore.NewBlobManager(backend),
					KnownPaths: models.ListBlobPaths,
				}
				if err := job.Execute(); err != nil {
					return err
				}
				cmd.Println("Sweep complete")
				return nil
			})
		},
	}
}
