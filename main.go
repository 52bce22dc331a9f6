package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"stagewise/pkg/blob"
	"stagewise/pkg/feedback"
	"stagewise/pkg/uploader"
)

var jwtSecret []byte // set from config before the server starts

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	jwtSecret = []byte(cfg.JWTSecret)

	// Lightweight migrate command: `./stagewise migrate` runs AutoMigrate
	// and seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB(cfg)
		fmt.Println("migration and seeding completed")
		return
	}

	initDB(cfg)

	blobs, err := openBlobStore(cfg)
	if err != nil {
		log.Fatal("object storage:", err)
	}

	app := &app{
		cfg:      cfg,
		store:    newTransformationStore(db),
		uploads:  uploader.New(blobs),
		feedback: feedback.NewCenter(),
	}

	r := gin.Default()
	setupRoutes(r, app)

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}

func openBlobStore(cfg Config) (blob.Store, error) {
	if cfg.S3Bucket == "" {
		log.Println("S3_BUCKET not set; using in-memory object store (uploads will not survive restarts)")
		return blob.NewMemory(), nil
	}
	return blob.NewS3(context.Background(), blob.S3Config{
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PathStyle:       cfg.S3PathStyle,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
}
