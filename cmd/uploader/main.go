package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"syllabye/internal/logger"
	"syllabye/internal/model"
	"syllabye/internal/nickname"
	"syllabye/internal/upload"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultCookieName = "syllabye.session"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log := logger.New()
		log.Error().Err(err).Msg("syllabye-upload failed")
		os.Exit(1)
	}
}

type uploadOptions struct {
	site       string
	cookie     string
	cookieName string
	courseID   string
	year       int
	semester   string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := uploadOptions{}

	cmd := &cobra.Command{
		Use:           "syllabye-upload [flags] FILE",
		Short:         "Upload a syllabus through the Syllabye web tier",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.site, "site", os.Getenv("SITE_URL"), "web tier base URL (defaults to $SITE_URL)")
	flags.StringVar(&opts.cookie, "cookie", "", "session cookie value, or a full name=value pair")
	flags.StringVar(&opts.cookieName, "cookie-name", defaultCookieName, "session cookie name")
	flags.StringVar(&opts.courseID, "course", "", "course ID")
	flags.IntVar(&opts.year, "year", 0, "academic year")
	flags.StringVar(&opts.semester, "semester", "", "semester")
	flags.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "timeout for each network step")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("semester")

	return cmd
}

func runUpload(cmd *cobra.Command, opts uploadOptions, path string) error {
	if opts.site == "" {
		return errors.New("--site or SITE_URL is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	log := logger.New()
	uploader := upload.NewUploader(
		upload.NewHTTPSubmitter(opts.site, opts.timeout),
		opts.timeout,
		nickname.NewValidate(),
		nil,
		log,
	)
	uploader.OnStage = func(stage upload.Stage) {
		log.Debug().Str("stage", string(stage)).Msg("Upload stage")
	}

	res := uploader.Upload(cmd.Context(), sessionCookie(opts.cookieName, opts.cookie), "", model.SyllabusUploadData{
		CourseID: opts.courseID,
		Year:     opts.year,
		Semester: opts.semester,
	}, upload.File{
		Name:    filepath.Base(path),
		Content: f,
	})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if !res.Success {
		return errors.New(res.ErrorText)
	}
	return nil
}

// sessionCookie builds the Cookie header from a bare value or a name=value pair.
func sessionCookie(name, value string) string {
	if value == "" || strings.Contains(value, "=") {
		return value
	}
	return name + "=" + value
}
