package website

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"git.nextdev.network/nextdev/nextdev/src/assets"
	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/models"
	"git.nextdev.network/nextdev/nextdev/src/nddata"
	"git.nextdev.network/nextdev/nextdev/src/perms"
)

// Matches what the frontend shows in people listings.
const userListLimit = 100

type userJson struct {
	ID               int       `json:"id"`
	Username         string    `json:"username"`
	Role             string    `json:"role"`
	IsBanned         bool      `json:"is_banned"`
	RegistrationDate time.Time `json:"registration_date"`
}

func makeUserJson(u *models.User) userJson {
	return userJson{
		ID:               u.ID,
		Username:         u.Username,
		Role:             u.Role.String(),
		IsBanned:         u.IsBanned,
		RegistrationDate: u.DateJoined,
	}
}

func UserList(c *RequestContext) ResponseData {
	users, err := nddata.FetchUsers(c, c.Conn, nddata.UsersQuery{Limit: userListLimit})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	result := make([]userJson, len(users))
	for i, u := range users {
		result[i] = makeUserJson(u)
	}

	var res ResponseData
	res.WriteJson(result, c.Perf)
	return res
}

func UserSearch(c *RequestContext) ResponseData {
	query := c.URL().Query().Get("q")
	if query == "" {
		return c.RejectRequest(http.StatusBadRequest, "search query is required")
	}
	if len(query) > 100 {
		return c.RejectRequest(http.StatusBadRequest, "search query cannot exceed 100 characters")
	}

	users, err := nddata.FetchUsers(c, c.Conn, nddata.UsersQuery{SearchQuery: query})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	result := make([]userJson, len(users))
	for i, u := range users {
		result[i] = makeUserJson(u)
	}

	var res ResponseData
	res.WriteJson(result, c.Perf)
	return res
}

func UserProfile(c *RequestContext) ResponseData {
	userID := c.PathParamInt("id")

	user, err := nddata.FetchUser(c, c.Conn, userID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return c.RejectRequest(http.StatusNotFound, "user not found")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	totalRating, err := nddata.FetchUserTotalRating(c, c.Conn, userID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var photoUrl *string
	if user.AvatarAssetID != nil {
		asset, err := assets.Fetch(c, c.Conn, *user.AvatarAssetID)
		if err == nil {
			url := assets.AssetURL(asset.S3Key)
			photoUrl = &url
		}
	}

	var res ResponseData
	res.WriteJson(map[string]any{
		"id":                user.ID,
		"username":          user.Username,
		"role":              user.Role.String(),
		"is_banned":         user.IsBanned,
		"registration_date": user.DateJoined.Format("02.01.2006, 15:04:05"),
		"total_rating":      totalRating,
		"profile_photo":     photoUrl,
	}, c.Perf)
	return res
}

func UserPosts(c *RequestContext) ResponseData {
	userID := c.PathParamInt("id")

	posts, err := nddata.FetchPosts(c, c.Conn, nddata.PostsQuery{AuthorIDs: []int{userID}})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(makePostListJson(posts), c.Perf)
	return res
}

func PromoteUser(c *RequestContext) ResponseData {
	target, errRes := fetchTargetUser(c)
	if errRes != nil {
		return *errRes
	}

	if err := perms.CanPromote(c.CurrentUser, target); err != nil {
		return rejectPermissionError(c, err)
	}

	err := nddata.SetUserRole(c, c.Conn, target.ID, models.RoleModerator)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]string{
		"status":  "ok",
		"message": "user promoted to moderator",
	}, c.Perf)
	return res
}

func DemoteUser(c *RequestContext) ResponseData {
	target, errRes := fetchTargetUser(c)
	if errRes != nil {
		return *errRes
	}

	if err := perms.CanDemote(c.CurrentUser, target); err != nil {
		return rejectPermissionError(c, err)
	}

	err := nddata.SetUserRole(c, c.Conn, target.ID, models.RoleUser)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]string{
		"status":  "ok",
		"message": "user demoted to regular user",
	}, c.Perf)
	return res
}

func BanUser(c *RequestContext) ResponseData {
	target, errRes := fetchTargetUser(c)
	if errRes != nil {
		return *errRes
	}

	if err := perms.CanBan(c.CurrentUser, target); err != nil {
		return rejectPermissionError(c, err)
	}

	err := nddata.SetUserBanned(c, c.Conn, target.ID, true)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]string{
		"status":  "ok",
		"message": "user banned",
	}, c.Perf)
	return res
}

func UnbanUser(c *RequestContext) ResponseData {
	target, errRes := fetchTargetUser(c)
	if errRes != nil {
		return *errRes
	}

	if err := perms.CanUnban(c.CurrentUser, target); err != nil {
		return rejectPermissionError(c, err)
	}

	err := nddata.SetUserBanned(c, c.Conn, target.ID, false)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]string{
		"status":  "ok",
		"message": "user unbanned",
	}, c.Perf)
	return res
}

func UploadProfilePhoto(c *RequestContext) ResponseData {
	target, errRes := fetchTargetUser(c)
	if errRes != nil {
		return *errRes
	}

	if err := perms.CanUploadPhoto(c.CurrentUser, target); err != nil {
		return rejectPermissionError(c, err)
	}

	err := c.Req.ParseMultipartForm(10 * 1024 * 1024)
	if err != nil {
		return c.RejectRequest(http.StatusBadRequest, "bad form data")
	}
	file, header, err := c.Req.FormFile("file")
	if err != nil {
		return c.RejectRequest(http.StatusBadRequest, "a file is required")
	}
	defer file.Close()

	if header.Header.Get("Content-Type") != "image/png" {
		return c.RejectRequest(http.StatusBadRequest, "only PNG files are supported")
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".png") {
		return c.RejectRequest(http.StatusBadRequest, "file must have a .png extension")
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	asset, err := assets.Create(c, c.Conn, assets.CreateInput{
		Content:     content,
		Filename:    header.Filename,
		ContentType: "image/png",
		UploaderID:  &c.CurrentUser.ID,
	})
	if err != nil {
		var invalid assets.InvalidAssetError
		if errors.As(err, &invalid) {
			return c.RejectRequest(http.StatusBadRequest, invalid.Error())
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	err = nddata.SetUserAvatar(c, c.Conn, target.ID, &asset.ID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	// Out with the old photo, now that nothing references it.
	if target.AvatarAssetID != nil {
		oldAsset, err := assets.Fetch(c, c.Conn, *target.AvatarAssetID)
		if err == nil {
			if err := assets.Delete(c, c.Conn, oldAsset); err != nil {
				c.Logger.Warn().Err(err).Msg("failed to delete user's old profile photo")
			}
		}
	}

	var res ResponseData
	res.WriteJson(map[string]any{
		"status":   "ok",
		"filename": asset.Filename,
		"url":      assets.AssetURL(asset.S3Key),
		"message":  "profile photo uploaded",
	}, c.Perf)
	return res
}

func DeleteProfilePhoto(c *RequestContext) ResponseData {
	target, errRes := fetchTargetUser(c)
	if errRes != nil {
		return *errRes
	}

	if err := perms.CanDeletePhoto(c.CurrentUser, target); err != nil {
		return rejectPermissionError(c, err)
	}

	if target.AvatarAssetID == nil {
		return c.RejectRequest(http.StatusBadRequest, "this user has no profile photo")
	}

	asset, err := assets.Fetch(c, c.Conn, *target.AvatarAssetID)
	if err != nil && !errors.Is(err, db.NotFound) {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	// Clear the reference first so the asset row can actually be deleted.
	err = nddata.SetUserAvatar(c, c.Conn, target.ID, nil)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	if asset != nil {
		if err := assets.Delete(c, c.Conn, asset); err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
	}

	var res ResponseData
	res.WriteJson(map[string]string{
		"status":  "ok",
		"message": "profile photo deleted",
	}, c.Perf)
	return res
}

// Fetches the user the route's id parameter points at. On failure returns
// the response to send instead.
func fetchTargetUser(c *RequestContext) (*models.User, *ResponseData) {
	target, err := nddata.FetchUser(c, c.Conn, c.PathParamInt("id"))
	if err != nil {
		if errors.Is(err, db.NotFound) {
			res := c.RejectRequest(http.StatusNotFound, "target user not found")
			return nil, &res
		}
		res := c.ErrorResponse(http.StatusInternalServerError, err)
		return nil, &res
	}
	return target, nil
}
