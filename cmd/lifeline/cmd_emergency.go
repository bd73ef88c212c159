package main

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/lifeline-agent/internal/app/alert"
	"github.com/PabloGalante/lifeline-agent/internal/app/submission"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

func (c *cli) adviseCmd() *cobra.Command {
	var text, voice, image, lang string

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Get first-aid advice for an emergency",
		Long: `Describe the emergency with exactly one of --text, --voice or --image.

--voice takes the transcript produced by the device's speech recognizer.
--image takes a JPEG, PNG or WebP file of at most 5MB; --text then adds context.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := domain.SubmissionRequest{TargetLanguage: lang}

			switch {
			case image != "":
				img, err := readImage(image)
				if err != nil {
					return err
				}
				req.Input = domain.ImageInput{Description: text, Image: img}
			case voice != "":
				req.Input = domain.VoiceInput{Transcript: voice}
			default:
				req.Input = domain.TextInput{Description: text}
			}

			out := c.app.Pipeline.Submit(cmd.Context(), req)
			printOutcome(cmd.OutOrStdout(), out)
			if out.Failure != nil {
				return domain.Ef(out.Failure.Kind, "advise", "%s", out.Failure.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Written description of the emergency")
	cmd.Flags().StringVar(&voice, "voice", "", "Voice transcript")
	cmd.Flags().StringVar(&image, "image", "", "Path to a photo of the injury")
	cmd.Flags().StringVar(&lang, "lang", domain.DefaultLanguage, "Advice language: en, es, fr, de or hi")
	cmd.MarkFlagsMutuallyExclusive("voice", "image")
	cmd.MarkFlagsMutuallyExclusive("voice", "text")
	cmd.MarkFlagsOneRequired("text", "voice", "image")

	return cmd
}

func readImage(path string) (domain.ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ImageData{}, domain.E(domain.KindValidation, "read image", err)
	}
	defer f.Close()

	// One byte over the limit is enough to reject the file.
	data, err := io.ReadAll(io.LimitReader(f, domain.MaxImageBytes+1))
	if err != nil {
		return domain.ImageData{}, domain.E(domain.KindValidation, "read image", err)
	}

	mimeType := http.DetectContentType(data)
	if mimeType == "application/octet-stream" {
		mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	}
	return domain.ImageData{MIMEType: mimeType, Data: data}, nil
}

func printOutcome(w io.Writer, out submission.Outcome) {
	for _, n := range out.Notices {
		fmt.Fprintf(w, "! %s\n", n.Message)
	}
	if out.Result == nil {
		return
	}
	fmt.Fprintf(w, "Diagnosis: %s\n", out.Result.Diagnosis)
	fmt.Fprintf(w, "Severity:  %s\n\n", out.Result.Severity.Label())
	fmt.Fprintln(w, out.Result.FirstAidInstructions)
}

func (c *cli) alertCmd() *cobra.Command {
	var lat, lng float64

	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Send an extreme emergency alert to every contact",
		Long: `Sends one alert with the current position and medical summary.

Without --lat/--lng the configured default location is used, which needs
the profile's location permission.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req alert.Request

			latSet, lngSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lng")
			if latSet != lngSet {
				return domain.E(domain.KindValidation, "alert", errors.New("--lat and --lng go together"))
			}
			if latSet {
				req.Location = &domain.Location{Lat: lat, Lng: lng}
			}

			a, err := c.app.Alerts.Trigger(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Emergency alert sent to %d contact(s).\n", len(a.Contacts))
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude")

	return cmd
}
