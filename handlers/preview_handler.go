package handlers

import (
	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/Harsh275110/StoreIt/utils"
)

// previewSizeLimit caps how large a blob the preview endpoint will load.
const previewSizeLimit = 32 << 20 // 32 MiB

// PreviewFileHandler renders an inline preview for supported file types:
// markdown becomes HTML, archives are listed without extraction and
// images get a cached webp thumbnail. Anything else reports "none" so the
// UI falls back to the plain file card.
func PreviewFileHandler(c *fiber.Ctx) error {
	record, err := recordStore.GetFile(c.Params("id"))
	if err != nil {
		return sendInternalServerError(c, "Error generating preview", err)
	}
	if record == nil || record.OwnerID != currentUserID(c) {
		return sendNotFoundError(c, "File not found")
	}

	switch {
	case utils.IsMarkdownFilename(record.FullName):
		if record.SizeBytes > previewSizeLimit {
			return sendValidationError(c, "File too large to preview")
		}
		source, err := blobManager.Load(record.BlobPath)
		if err != nil {
			return sendInternalServerError(c, "Error generating preview", err)
		}
		html, err := utils.RenderMarkdown(source)
		if err != nil {
			return sendInternalServerError(c, "Error generating preview", err)
		}
		return c.JSON(fiber.Map{"type": "markdown", "html": html})

	case utils.IsArchiveFilename(record.FullName):
		if record.SizeBytes > previewSizeLimit {
			return sendValidationError(c, "File too large to preview")
		}
		data, err := blobManager.Load(record.BlobPath)
		if err != nil {
			return sendInternalServerError(c, "Error generating preview", err)
		}
		entries, err := utils.ListArchiveEntries(record.FullName, data)
		if err != nil {
			return sendValidationError(c, "Could not read archive contents")
		}
		return c.JSON(fiber.Map{"type": "archive", "entries": entries})

	case utils.IsImageContentType(record.ContentType):
		thumb, err := imageThumbnail(record.BlobPath)
		if err != nil {
			log.Warnf("Thumbnail for %s failed: %v", record.BlobPath, err)
			return c.JSON(fiber.Map{"type": "none"})
		}
		c.Set(fiber.HeaderContentType, "image/webp")
		return c.Send(thumb)
	}

	return c.JSON(fiber.Map{"type": "none"})
}

// imageThumbnail returns the cached thumbnail for a blob, generating and
// storing it next to the original on first request.
func imageThumbnail(blobPath string) ([]byte, error) {
	thumbPath := blobPath + ".thumb.webp"

	if exists, err := blobManager.Exists(thumbPath); err == nil && exists {
		return blobManager.Load(thumbPath)
	}

	data, err := blobManager.Load(blobPath)
	if err != nil {
		return nil, err
	}

	thumb, err := utils.MakeThumbnail(data)
	if err != nil {
		return nil, err
	}

	if err := blobManager.Save(thumbPath, thumb); err != nil {
		log.Warnf("Failed to cache thumbnail %s: %v", thumbPath, err)
	}
	return thumb, nil
}
