package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/models"
)

const multipartMemory = 8 << 20

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.deps.MaxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

func appForm(r *http.Request) models.AppForm {
	return models.AppForm{
		Name:        r.FormValue("name"),
		Developer:   r.FormValue("developer"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Tags:        r.FormValue("tags"),
		Status:      r.FormValue("status"),
		Rating:      r.FormValue("rating"),
		Downloads:   r.FormValue("downloads"),
		Version:     r.FormValue("version"),
		Size:        r.FormValue("size"),
		Store:       r.FormValue("store"),
		StoreURL:    r.FormValue("storeUrl"),
	}
}

// formAssets reads the icon and screenshots, keeping the submitted order.
func formAssets(r *http.Request) (models.Assets, error) {
	var assets models.Assets
	if r.MultipartForm == nil {
		return assets, nil
	}

	if fhs := r.MultipartForm.File["icon"]; len(fhs) > 0 {
		a, err := readAsset(fhs[0])
		if err != nil {
			return assets, err
		}
		assets.Icon = &a
	}
	for _, fh := range r.MultipartForm.File["screenshots"] {
		a, err := readAsset(fh)
		if err != nil {
			return assets, err
		}
		assets.Screenshots = append(assets.Screenshots, a)
	}
	return assets, nil
}

func readAsset(fh *multipart.FileHeader) (models.Asset, error) {
	f, err := fh.Open()
	if err != nil {
		return models.Asset{}, fmt.Errorf("%w: open %s: %v", common.ErrValidation, fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.Asset{}, fmt.Errorf("%w: read %s: %v", common.ErrValidation, fh.Filename, err)
	}
	if len(data) == 0 {
		return models.Asset{}, fmt.Errorf("%w: %s is empty", common.ErrValidation, fh.Filename)
	}
	return models.Asset{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// appRequest parses and validates a create or update submission.
func (s *Server) appRequest(w http.ResponseWriter, r *http.Request) (models.AppFields, models.Assets, error) {
	if err := s.parseMultipart(w, r); err != nil {
		return models.AppFields{}, models.Assets{}, err
	}
	fields, err := appForm(r).Validate()
	if err != nil {
		return models.AppFields{}, models.Assets{}, err
	}
	assets, err := formAssets(r)
	if err != nil {
		return models.AppFields{}, models.Assets{}, err
	}
	return fields, assets, nil
}
