package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/angelmondragon/backoffice/api/validators"
	productsvc "github.com/angelmondragon/backoffice/internal/products"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

const (
	imagesField = "images"
	dataField   = "data"
)

// Form keys holding JSON documents rather than plain text.
var jsonFormFields = map[string]bool{
	"attributes":    true,
	"category":      true,
	"imageUrls":     true,
	"keepImageUrls": true,
}

// Form keys holding numbers; blank means null.
var numericFormFields = map[string]bool{
	"costPrice":    true,
	"sellingPrice": true,
	"categoryId":   true,
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// decodeProductRequest fills dest from a JSON body or a multipart form and
// returns the uploaded image files. A multipart request may carry the whole
// payload as JSON in a "data" part, or one form field per key.
func decodeProductRequest(r *http.Request, maxBytes int64, dest any) ([]productsvc.ImageUpload, error) {
	if !isMultipart(r) {
		return nil, validators.DecodeJSONBody(r, dest)
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "Upload is too large")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeBadRequest, err, "invalid multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	payload, err := formPayload(r.MultipartForm.Value)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeBadRequest, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}

	return readUploads(r.MultipartForm.File[imagesField])
}

func formPayload(values map[string][]string) ([]byte, error) {
	if data, ok := values[dataField]; ok && len(data) > 0 {
		return []byte(data[0]), nil
	}

	doc := make(map[string]json.RawMessage, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		raw := strings.TrimSpace(vals[0])
		switch {
		case jsonFormFields[key], numericFormFields[key]:
			if raw == "" {
				doc[key] = json.RawMessage("null")
				continue
			}
			if !json.Valid([]byte(raw)) {
				return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "Invalid "+key+" value")
			}
			doc[key] = json.RawMessage(raw)
		default:
			encoded, err := json.Marshal(vals[0])
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeBadRequest, err, "invalid form value")
			}
			doc[key] = encoded
		}
	}
	return json.Marshal(doc)
}

func readUploads(files []*multipart.FileHeader) ([]productsvc.ImageUpload, error) {
	uploads := make([]productsvc.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeBadRequest, err, "read uploaded image")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeBadRequest, err, "read uploaded image")
		}
		uploads = append(uploads, productsvc.ImageUpload{Filename: fh.Filename, Data: data})
	}
	return uploads, nil
}
