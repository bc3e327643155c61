package webui

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"

	"ourstory/dbtypes"
	"ourstory/identity"
	"ourstory/imageutil"
	"ourstory/webui/uitemplates"

	"github.com/golang/glog"
)

const (
	// Uploads larger than this are rejected outright.
	maxUploadBytes = 32 << 20

	photoMaxWidth  = 1920
	photoMaxHeight = 1920
	photoQuality   = 85
)

// compressOrOriginal recompresses an uploaded image for the album,
// falling back to the original bytes when the image can't be decoded
// (HEIC and friends).
func compressOrOriginal(file multipart.File, filename string) ([]byte, error) {
	payload, err := imageutil.Compress(file, photoMaxWidth, photoMaxHeight, photoQuality)
	if err == nil {
		return payload, nil
	}

	glog.Infof("Could not recompress %q, storing original bytes: %v", filename, err)
	if _, err := file.Seek(0, 0); err != nil {
		return nil, err
	}
	buf := bytes.Buffer{}
	if _, err := buf.ReadFrom(file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// uploadImageBlob runs the full upload path for one image file:
// recompress, store the blob, return the retrieval URL and object key.
func (u *WebUI) uploadImageBlob(ctx context.Context, file multipart.File, filename string) (retrievalURL, key string, err error) {
	payload, err := compressOrOriginal(file, filename)
	if err != nil {
		return "", "", err
	}
	return u.blobs.Upload(ctx, bytes.NewReader(payload), int64(len(payload)), "photos", filename)
}

// photoDocument builds the album record for a stored blob.
func photoDocument(member identity.Member, caption, retrievalURL, key string) *dbtypes.Photo {
	return &dbtypes.Photo{
		Caption:      caption,
		RetrievalURL: retrievalURL,
		StorageKey:   key,
		UploadedBy:   member.String(),
	}
}

// photosHandler lists the album and accepts multipart uploads.
func (u *WebUI) photosHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/photos" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	member, ok := u.requireMember(w, r)
	if !ok {
		return
	}

	userErr := ""
	if r.Method == http.MethodPost {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			glog.Errorf("Error while parsing multipart form: %v", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("photo")
		if err != nil {
			glog.Errorf("Error while reading uploaded file: %v", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		defer file.Close()

		url, key, err := u.uploadImageBlob(ctx, file, header.Filename)
		if err != nil {
			glog.Errorf("Error while uploading photo blob: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		if _, err := u.db.CreatePhoto(ctx, photoDocument(member, r.FormValue("caption"), url, key)); err != nil {
			glog.Errorf("Error while creating photo record: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/photos", http.StatusFound)
		return
	}

	photos, err := u.db.Photos(ctx)
	if err != nil {
		glog.Errorf("Error while listing photos: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.PhotosParams{UserError: userErr}
	for _, photo := range photos {
		params.Photos = append(params.Photos, &uitemplates.PhotoEntry{
			ID:           photo.ID,
			Caption:      photo.Caption,
			RetrievalURL: photo.RetrievalURL,
			UploadedBy:   photo.UploadedBy,
		})
	}

	render(w, uitemplates.PhotosTemplate, params)
}

func (u *WebUI) photosDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/photos/delete" || r.Method != http.MethodPost {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if _, ok := u.requireMember(w, r); !ok {
		return
	}

	if !parseForm(w, r) {
		return
	}

	if err := u.db.DeletePhoto(r.Context(), u.blobs, r.PostForm.Get("id")); err != nil {
		glog.Errorf("Error while deleting photo: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/photos", http.StatusFound)
}
