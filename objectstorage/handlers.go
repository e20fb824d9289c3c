package objectstorage

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/bloodline/backend/api/apicommon"
	"github.com/bloodline/backend/db"
	"github.com/bloodline/backend/errors"
	"github.com/bloodline/backend/internal"
)

// isObjectNameRgx is a regular expression to match object names.
var isObjectNameRgx = regexp.MustCompile(`^([a-zA-Z0-9]+)\.(jpg|jpeg|png)`)

// UploadAvatarWithFormHandler uploads a donor avatar through a multipart
// form. It expects the request to contain a "file" field with the image and
// an "email" field with the donor email. The resulting object URL is
// upserted onto the donor profile, creating the profile when the email is
// not registered yet.
func (osc *Client) UploadAvatarWithFormHandler(w http.ResponseWriter, r *http.Request) {
	// 32 MB is the default used by FormFile() function
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		errors.ErrStorageInvalidObject.Withf("could not parse form: %v", err).Write(w)
		return
	}
	donorEmail := r.FormValue("email")
	if !internal.ValidEmail(donorEmail) {
		errors.ErrEmailMalformed.Write(w)
		return
	}
	// attribute the stored object to the staff member when the request is
	// authenticated, and to the donor otherwise
	uploader := donorEmail
	if user, ok := apicommon.UserFromContext(r.Context()); ok {
		uploader = user.Email
	}

	// the fileHeaders are accessible only after ParseMultipartForm is called
	var avatarURL string
	for _, fileHeaders := range r.MultipartForm.File {
		for _, fileHeader := range fileHeaders {
			file, err := fileHeader.Open()
			if err != nil {
				errors.ErrStorageInvalidObject.Withf("cannot open file %s %v", fileHeader.Filename, err).Write(w)
				return
			}
			defer func() {
				if err := file.Close(); err != nil {
					errors.ErrStorageInvalidObject.Withf("cannot close file %s %v", fileHeader.Filename, err).Write(w)
					return
				}
			}()
			// upload the file using the object storage client and get the
			// URL of the uploaded file
			storedFileID, err := osc.Put(file, fileHeader.Size, uploader)
			if err != nil {
				errors.ErrInternalStorageError.Withf("%s %v", fileHeader.Filename, err).Write(w)
				return
			}
			avatarURL = objectURL(osc.ServerURL, storedFileID)
		}
	}
	if avatarURL == "" {
		errors.ErrStorageInvalidObject.With("no files found").Write(w)
		return
	}
	// attach the avatar to the donor profile, creating it if needed
	if err := osc.db.SetDonor(&db.Donor{Email: donorEmail, AvatarURL: avatarURL}); err != nil {
		errors.ErrGenericInternalServerError.Withf("cannot update donor profile: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, map[string]string{"url": avatarURL})
}

// DownloadImageInlineHandler retrieves the object from storage and serves it
// inline, so browsers display it instead of downloading it.
func (osc *Client) DownloadImageInlineHandler(w http.ResponseWriter, r *http.Request) {
	objectName := chi.URLParam(r, "objectName")
	if objectName == "" {
		errors.ErrMalformedURLParam.With("objectName is required").Write(w)
		return
	}
	objectID, ok := objectIDfromName(objectName)
	if !ok {
		errors.ErrStorageInvalidObject.With("invalid objectName").Write(w)
		return
	}
	// get the object from the object storage client
	object, err := osc.Get(objectID)
	if err != nil {
		if err == ErrorObjectNotFound {
			errors.ErrStorageObjectNotFound.Write(w)
			return
		}
		errors.ErrStorageInvalidObject.Withf("cannot get object %v", err).Write(w)
		return
	}
	// write the object to the response
	w.Header().Set("Content-Type", object.ContentType)
	w.Header().Set("Content-Disposition", "inline")
	if _, err := w.Write(object.Data); err != nil {
		errors.ErrInternalStorageError.Withf("cannot write object %v", err).Write(w)
		return
	}
}

// objectURL returns the URL for the object with the given objectID.
func objectURL(baseURL, objectID string) string {
	return fmt.Sprintf("%s/storage/%s", baseURL, objectID)
}

// objectIDfromName returns the objectID from the given object name. If the
// name is not a valid object name, it returns an empty string and false.
func objectIDfromName(name string) (string, bool) {
	objectID := isObjectNameRgx.FindStringSubmatch(name)
	if len(objectID) != 3 {
		return "", false
	}
	return objectID[1], true
}
