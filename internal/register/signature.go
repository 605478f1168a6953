package register

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"

	"staffregister/internal/metrics"
)

// ArtifactStore persists signature images. Write returns either a path
// relative to the public base URL or an absolute URL.
type ArtifactStore interface {
	Write(ctx context.Context, relPath string, data []byte) (string, error)
}

// Signature is a decoded signature payload. When Embedded is false the
// payload is an opaque string stored verbatim.
type Signature struct {
	Raw      string
	Embedded bool
	Data     []byte
}

// DecodeSignature splits a data-URI payload at its first comma and decodes
// the standard base64 body.
func DecodeSignature(payload string) (Signature, error) {
	i := strings.IndexByte(payload, ',')
	if i < 0 {
		return Signature{Raw: payload}, nil
	}
	data, err := base64.StdEncoding.DecodeString(payload[i+1:])
	if err != nil {
		return Signature{}, &ArtifactDecodeError{Err: err}
	}
	if len(data) == 0 {
		return Signature{}, &ArtifactDecodeError{Err: errors.New("empty image data")}
	}
	return Signature{Raw: payload, Embedded: true, Data: data}, nil
}

// SignatureProcessor turns decoded signatures into the reference stored in
// the signature_reference column.
type SignatureProcessor struct {
	store   ArtifactStore
	baseURL string
	subpath string
	inline  bool
	newName func() string
}

// NewSignatureProcessor wires an artifact store. A nil store keeps every
// payload verbatim.
func NewSignatureProcessor(store ArtifactStore, baseURL, subpath string, inline bool) *SignatureProcessor {
	return &SignatureProcessor{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		subpath: strings.Trim(subpath, "/"),
		inline:  inline,
		newName: uuid.NewString,
	}
}

// Reference writes the image, if any, and returns the value to persist.
func (p *SignatureProcessor) Reference(ctx context.Context, sig Signature) (string, error) {
	if !sig.Embedded {
		return sig.Raw, nil
	}
	if p == nil || p.store == nil {
		log.Printf("signature: artifact storage not configured, storing payload verbatim")
		return sig.Raw, nil
	}

	name := p.newName()
	rel := path.Join(p.subpath, name+".png")
	ref, err := p.store.Write(ctx, rel, sig.Data)
	if err != nil {
		metrics.ArtifactWrites.WithLabelValues("error").Inc()
		return "", &ArtifactWriteError{Name: name, Err: err}
	}
	metrics.ArtifactWrites.WithLabelValues("ok").Inc()

	url := ref
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		url = p.baseURL + "/" + strings.TrimLeft(ref, "/")
	}
	if p.inline {
		return fmt.Sprintf(`=IMAGE("%s")`, url), nil
	}
	return url, nil
}
