package artifact

import (
	"context"
	"path"
	"strings"

	"staffregister/internal/cloudinary"
)

// Cloudinary places artifacts in a Cloudinary folder and returns the secure URL.
type Cloudinary struct {
	client *cloudinary.Client
}

func NewCloudinary(client *cloudinary.Client) *Cloudinary {
	return &Cloudinary{client: client}
}

// Write maps relPath "dir/name.png" onto folder "dir" and public id "name".
func (c *Cloudinary) Write(ctx context.Context, relPath string, data []byte) (string, error) {
	dir, file := path.Split(relPath)
	res, err := c.client.UploadBytes(ctx, data, cloudinary.Upload{
		Folder:   strings.Trim(dir, "/"),
		PublicID: strings.TrimSuffix(file, path.Ext(file)),
		Filename: file,
	})
	if err != nil {
		return "", err
	}
	return res.SecureURL, nil
}
