package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastmailctl/fastmailctl/internal/attachment"
	"github.com/fastmailctl/fastmailctl/internal/model"
)

type attachmentText struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        uint64 `json:"size"`
	Text        string `json:"text"`
}

type savedAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Path        string `json:"path"`
	Resized     bool   `json:"resized,omitempty"`
}

func (a *app) downloadCmd() *cobra.Command {
	var output, format, maxSize string

	cmd := &cobra.Command{
		Use:   "download <email-id>",
		Short: "Download email attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			email, err := client.GetEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(email.Attachments) == 0 {
				return emit(model.SuccessMessage("Email %s has no attachments", args[0]))
			}

			bound := 0
			if maxSize != "" {
				bound, err = parseByteSize(maxSize)
				if err != nil {
					return err
				}
			}
			resolver := a.resolver(client)

			switch format {
			case "json":
				texts := make([]attachmentText, 0, len(email.Attachments))
				for _, part := range email.Attachments {
					content, err := resolver.ResolveText(cmd.Context(), part.BlobID, part.Type, part.Name, a.cfg.Attachment.TextMaxBytes)
					entry := attachmentText{
						Filename:    attachmentName(part),
						ContentType: part.Type,
						Size:        part.Size,
					}
					if err != nil {
						entry.Text = fmt.Sprintf("[no text extracted: %v]", err)
					} else {
						entry.Text = content.Text
					}
					texts = append(texts, entry)
				}
				return emit(model.SuccessOutput(texts))

			case "raw":
				if err := os.MkdirAll(output, 0o755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
				ratio := a.cfg.Attachment.ImageScaleRatio
				saved := make([]savedAttachment, 0, len(email.Attachments))
				for _, part := range email.Attachments {
					name, data, mimeType, resized, err := rawAttachment(cmd.Context(), client, part, bound, ratio)
					if err != nil {
						return fmt.Errorf("attachment %s: %w", attachmentName(part), err)
					}
					path := filepath.Join(output, name)
					if err := os.WriteFile(path, data, 0o644); err != nil {
						return fmt.Errorf("writing %s: %w", path, err)
					}
					saved = append(saved, savedAttachment{
						Filename:    name,
						ContentType: mimeType,
						Size:        len(data),
						Path:        path,
						Resized:     resized,
					})
				}
				return emit(model.SuccessOutput(saved))

			default:
				return fmt.Errorf("unknown format %q (expected raw or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", ".", "Directory to save attachments into")
	cmd.Flags().StringVarP(&format, "format", "f", "raw", "Output format: raw (save files) or json (extracted text)")
	cmd.Flags().StringVar(&maxSize, "max-size", "", "Downscale images larger than this (e.g. 500K, 1M)")

	return cmd
}

// rawAttachment fetches one attachment's bytes unmodified. Text
// decoders never run here; the only transformation is downscaling an
// image that exceeds bound, which re-encodes as JPEG and renames the
// file accordingly.
func rawAttachment(ctx context.Context, fetcher attachment.BlobFetcher, part model.EmailBodyPart, bound int, ratio float64) (name string, data []byte, mimeType string, resized bool, err error) {
	data, err = fetcher.DownloadBlob(ctx, part.BlobID)
	if err != nil {
		return "", nil, "", false, err
	}
	name = attachmentName(part)
	mimeType = attachment.Sniff(data, part.Type, part.Name)

	if bound > 0 && strings.HasPrefix(mimeType, "image/") && len(data) > bound {
		scaled, scaledType, err := attachment.BoundImage(ctx, data, mimeType, bound, ratio)
		if err != nil {
			return "", nil, "", false, err
		}
		if scaledType != mimeType {
			name = replaceExt(name, ".jpg")
		}
		return name, scaled, scaledType, true, nil
	}
	return name, data, mimeType, false, nil
}

func attachmentName(part model.EmailBodyPart) string {
	if part.Name != "" {
		return part.Name
	}
	if part.BlobID != "" {
		return "attachment-" + part.BlobID
	}
	return "attachment"
}

func replaceExt(name, ext string) string {
	if old := filepath.Ext(name); old != "" {
		return strings.TrimSuffix(name, old) + ext
	}
	return name + ext
}

// parseByteSize parses a human size like "500K" or "1M". A bare
// number is taken as bytes.
func parseByteSize(s string) (int, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	mult := 1
	switch {
	case strings.HasSuffix(s, "K"):
		mult, s = 1024, strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		mult, s = 1024*1024, strings.TrimSuffix(s, "M")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid size %q (expected e.g. 500K or 1M)", s)
	}
	return n * mult, nil
}
