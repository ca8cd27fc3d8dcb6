package upload

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/spf13/cobra"

	"github.com/fpscan/fpscan/pkg/shared/config"
	"github.com/fpscan/fpscan/pkg/shared/logger"
)

// RunOptionsUpload holds the arguments for the upload command.
type RunOptionsUpload struct {
	S3Bucket string
	S3Region string
	Prefix   string
}

var (
	AppConfig     *config.Config
	uploadOptions RunOptionsUpload
)

var UploadCmd = &cobra.Command{
	Use:                   "upload [--bucket BUCKET] [--region REGION] [--prefix PREFIX] FINDINGS_FILE",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Uploads a findings file to S3",
	Args:                  cobra.ExactArgs(1),
	RunE:                  runUploadCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func init() {
	UploadCmd.Flags().StringVar(&uploadOptions.S3Bucket, "bucket", "", "S3 bucket (defaults to upload.s3_bucket in the config)")
	UploadCmd.Flags().StringVar(&uploadOptions.S3Region, "region", "", "S3 region (defaults to upload.s3_region in the config)")
	UploadCmd.Flags().StringVar(&uploadOptions.Prefix, "prefix", "findings", "key prefix inside the bucket")
}

func runUploadCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-upload")

	bucket := uploadOptions.S3Bucket
	if bucket == "" {
		bucket = AppConfig.Upload.S3Bucket
	}
	region := uploadOptions.S3Region
	if region == "" {
		region = AppConfig.Upload.S3Region
	}
	if bucket == "" {
		return fmt.Errorf("an S3 bucket is required: --bucket or upload.s3_bucket in the config")
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		log.Error("failed to open findings file", "file", path, "error", err)
		return err
	}
	defer f.Close()

	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(region),
	}))
	uploader := s3manager.NewUploader(sess)

	key := filepath.Join(uploadOptions.Prefix, filepath.Base(path))
	result, err := uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		log.Error("failed to upload findings file", "bucket", bucket, "key", key, "error", err)
		return err
	}

	log.Info("uploaded findings file", "location", result.Location)
	fmt.Printf("Uploaded %s to %s\n", path, result.Location)
	return nil
}
