package website

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/nddata"
	"git.nextdev.network/nextdev/nextdev/src/perms"
)

// How many tags a post shows on its detail page.
const postTagDisplayLimit = 5

const commentDateFormat = "02.01.2006, 15:04:05"

type postJson struct {
	ID           int       `json:"idposts"`
	Title        string    `json:"title"`
	Text         string    `json:"text"`
	Date         time.Time `json:"date"`
	AuthorID     int       `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	Rating       int       `json:"rating"`
	CommentCount int       `json:"comment_count"`
	ViewCount    int       `json:"view_count"`
}

func makePostJson(p *nddata.PostAndStuff) postJson {
	return postJson{
		ID:           p.Post.ID,
		Title:        p.Title,
		Text:         p.Body,
		Date:         p.PostDate,
		AuthorID:     p.AuthorID,
		AuthorName:   p.AuthorName,
		Rating:       p.Rating,
		CommentCount: p.CommentCount,
		ViewCount:    p.ViewCount,
	}
}

func makePostListJson(posts []*nddata.PostAndStuff) []postJson {
	result := make([]postJson, len(posts))
	for i, p := range posts {
		result[i] = makePostJson(p)
	}
	return result
}

func PostList(c *RequestContext) ResponseData {
	posts, err := nddata.FetchPosts(c, c.Conn, nddata.PostsQuery{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(makePostListJson(posts), c.Perf)
	return res
}

func PostSearch(c *RequestContext) ResponseData {
	query := c.URL().Query().Get("q")
	if query == "" {
		return c.RejectRequest(http.StatusBadRequest, "search query is required")
	}
	if len(query) > 150 {
		return c.RejectRequest(http.StatusBadRequest, "search query cannot exceed 150 characters")
	}

	posts, err := nddata.FetchPosts(c, c.Conn, nddata.PostsQuery{SearchQuery: query})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(makePostListJson(posts), c.Perf)
	return res
}

func PostDetail(c *RequestContext) ResponseData {
	postID := c.PathParamInt("id")

	post, err := nddata.FetchPost(c, c.Conn, postID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return c.RejectRequest(http.StatusNotFound, "post not found")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	tags, err := nddata.FetchPostTags(c, c.Conn, postID, postTagDisplayLimit)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	tagsJson := make([]map[string]any, len(tags))
	for i, tag := range tags {
		tagsJson[i] = map[string]any{"idtag": tag.ID, "name": tag.Name}
	}

	detail := struct {
		postJson
		Tags []map[string]any `json:"tags"`
	}{makePostJson(post), tagsJson}

	var res ResponseData
	res.WriteJson(detail, c.Perf)
	return res
}

func CreatePost(c *RequestContext) ResponseData {
	if c.CurrentUser.IsBanned {
		return c.RejectRequest(http.StatusForbidden, "your account is banned and cannot create posts")
	}

	form, err := c.GetFormValues()
	if err != nil {
		return c.RejectRequest(http.StatusBadRequest, "bad form data")
	}
	title := form.Get("title")
	text := form.Get("text")

	if title == "" || text == "" {
		return c.RejectRequest(http.StatusBadRequest, "title and text are required")
	}
	if len(title) >= 500 {
		return c.RejectRequest(http.StatusBadRequest, "title must be shorter than 500 characters")
	}

	var tagIDs []int
	for _, field := range strings.Split(form.Get("tags"), ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		tagID, err := strconv.Atoi(field)
		if err != nil {
			return c.RejectRequest(http.StatusBadRequest, "invalid tag ids")
		}
		tagIDs = append(tagIDs, tagID)
	}

	post, err := nddata.CreatePost(c, c.Conn, title, text, c.CurrentUser.ID, tagIDs)
	if err != nil {
		if errors.Is(err, nddata.ErrUnknownTag) {
			return c.RejectRequest(http.StatusBadRequest, err.Error())
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]any{
		"status":  "ok",
		"idposts": post.ID,
		"message": "post created successfully",
	}, c.Perf)
	return res
}

func DeletePost(c *RequestContext) ResponseData {
	postID := c.PathParamInt("id")

	post, err := nddata.FetchPost(c, c.Conn, postID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return c.RejectRequest(http.StatusNotFound, "post not found")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	author, err := nddata.FetchUser(c, c.Conn, post.AuthorID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	if err := perms.CanDeleteContent(c.CurrentUser, author); err != nil {
		return rejectPermissionError(c, err)
	}

	err = nddata.DeletePost(c, c.Conn, postID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return c.RejectRequest(http.StatusNotFound, "post not found")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]string{
		"status":  "ok",
		"message": "post deleted successfully",
	}, c.Perf)
	return res
}

func PostComments(c *RequestContext) ResponseData {
	postID := c.PathParamInt("id")

	comments, err := nddata.FetchComments(c, c.Conn, postID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	result := make([]map[string]any, len(comments))
	for i, comment := range comments {
		result[i] = map[string]any{
			"idcomments":  comment.Comment.ID,
			"text":        comment.Body,
			"author_id":   comment.AuthorID,
			"author_name": comment.AuthorName,
			"author_role": comment.AuthorRole.String(),
			"parent_id":   comment.ParentID,
			"date":        comment.PostDate.Format(commentDateFormat),
		}
	}

	var res ResponseData
	res.WriteJson(result, c.Perf)
	return res
}

func CreateComment(c *RequestContext) ResponseData {
	if c.CurrentUser.IsBanned {
		return c.RejectRequest(http.StatusForbidden, "your account is banned and cannot comment")
	}

	postID := c.PathParamInt("id")

	form, err := c.GetFormValues()
	if err != nil {
		return c.RejectRequest(http.StatusBadRequest, "bad form data")
	}
	text := form.Get("text")

	if text == "" {
		return c.RejectRequest(http.StatusBadRequest, "text is required")
	}
	if len(text) >= 1000 {
		return c.RejectRequest(http.StatusBadRequest, "comment must be shorter than 1000 characters")
	}

	var parentID *int
	if parentStr := form.Get("parent_id"); parentStr != "" {
		parent, err := strconv.Atoi(parentStr)
		if err != nil {
			return c.RejectRequest(http.StatusBadRequest, "invalid parent comment id")
		}
		parentID = &parent
	}

	comment, err := nddata.CreateComment(c, c.Conn, postID, c.CurrentUser.ID, parentID, text)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return c.RejectRequest(http.StatusNotFound, "post not found")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]any{
		"status":     "ok",
		"idcomments": comment.ID,
		"message":    "comment created",
	}, c.Perf)
	return res
}

func DeleteComment(c *RequestContext) ResponseData {
	commentID := c.PathParamInt("id")

	comment, err := nddata.FetchComment(c, c.Conn, commentID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return c.RejectRequest(http.StatusNotFound, "comment not found")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	author, err := nddata.FetchUser(c, c.Conn, comment.AuthorID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	if err := perms.CanDeleteContent(c.CurrentUser, author); err != nil {
		return rejectPermissionError(c, err)
	}

	err = nddata.DeleteComment(c, c.Conn, commentID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return c.RejectRequest(http.StatusNotFound, "comment not found")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]string{
		"status":  "ok",
		"message": "comment deleted successfully",
	}, c.Perf)
	return res
}

func RatePost(c *RequestContext) ResponseData {
	if c.CurrentUser.IsBanned {
		return c.RejectRequest(http.StatusForbidden, "banned users cannot rate posts")
	}

	postID := c.PathParamInt("id")

	form, err := c.GetFormValues()
	if err != nil {
		return c.RejectRequest(http.StatusBadRequest, "bad form data")
	}
	isPositive, err := strconv.ParseBool(form.Get("is_positive"))
	if err != nil {
		return c.RejectRequest(http.StatusBadRequest, "is_positive must be true or false")
	}

	if errRes := requirePost(c, postID); errRes != nil {
		return *errRes
	}

	err = nddata.SetRating(c, c.Conn, c.CurrentUser.ID, postID, isPositive)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	rating, err := nddata.FetchPostRating(c, c.Conn, postID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]any{
		"status":  "ok",
		"message": "post rated successfully",
		"rating":  rating.Total,
	}, c.Perf)
	return res
}

func UnratePost(c *RequestContext) ResponseData {
	postID := c.PathParamInt("id")

	if errRes := requirePost(c, postID); errRes != nil {
		return *errRes
	}

	err := nddata.DeleteRating(c, c.Conn, c.CurrentUser.ID, postID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return c.RejectRequest(http.StatusNotFound, "rating not found")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	rating, err := nddata.FetchPostRating(c, c.Conn, postID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]any{
		"status":  "ok",
		"message": "rating deleted successfully",
		"rating":  rating.Total,
	}, c.Perf)
	return res
}

func PostRating(c *RequestContext) ResponseData {
	postID := c.PathParamInt("id")

	if errRes := requirePost(c, postID); errRes != nil {
		return *errRes
	}

	rating, err := nddata.FetchPostRating(c, c.Conn, postID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]any{
		"post_id":  rating.PostID,
		"positive": rating.Positive,
		"negative": rating.Negative,
		"total":    rating.Total,
	}, c.Perf)
	return res
}

// Works without a session: anonymous visitors simply see "not rated".
func UserPostRating(c *RequestContext) ResponseData {
	var res ResponseData

	if c.CurrentUser == nil {
		res.WriteJson(map[string]any{"rated": false}, c.Perf)
		return res
	}

	postID := c.PathParamInt("id")
	rating, err := nddata.FetchUserRating(c, c.Conn, c.CurrentUser.ID, postID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			res.WriteJson(map[string]any{"rated": false}, c.Perf)
			return res
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	res.WriteJson(map[string]any{
		"rated":       true,
		"is_positive": rating.IsPositive,
	}, c.Perf)
	return res
}

func IncrementPostView(c *RequestContext) ResponseData {
	postID := c.PathParamInt("id")

	viewCount, err := nddata.IncrementPostViews(c, c.Conn, postID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return c.RejectRequest(http.StatusNotFound, "post not found")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]any{
		"status":     "ok",
		"view_count": viewCount,
	}, c.Perf)
	return res
}

const leaderboardLimit = 5

func statsPeriodDays(c *RequestContext) (int, bool) {
	period := c.URL().Query().Get("period")
	switch period {
	case "", "week":
		return 7, true
	case "today":
		return 1, true
	default:
		return 0, false
	}
}

func TopPosters(c *RequestContext) ResponseData {
	days, ok := statsPeriodDays(c)
	if !ok {
		return c.RejectRequest(http.StatusBadRequest, "period must be 'today' or 'week'")
	}

	posters, err := nddata.FetchTopPosters(c, c.Conn, days, leaderboardLimit)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	result := make([]map[string]any, len(posters))
	for i, poster := range posters {
		result[i] = map[string]any{
			"author_id":   poster.AuthorID,
			"username":    poster.Username,
			"total_views": poster.TotalViews,
		}
	}

	var res ResponseData
	res.WriteJson(result, c.Perf)
	return res
}

func TopPosts(c *RequestContext) ResponseData {
	days, ok := statsPeriodDays(c)
	if !ok {
		return c.RejectRequest(http.StatusBadRequest, "period must be 'today' or 'week'")
	}

	posts, err := nddata.FetchTopPosts(c, c.Conn, days, leaderboardLimit)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	result := make([]map[string]any, len(posts))
	for i, post := range posts {
		result[i] = map[string]any{
			"idposts":     post.PostID,
			"title":       post.Title,
			"view_count":  post.ViewCount,
			"author_id":   post.AuthorID,
			"author_name": post.AuthorName,
		}
	}

	var res ResponseData
	res.WriteJson(result, c.Perf)
	return res
}

func TagList(c *RequestContext) ResponseData {
	tags, err := nddata.FetchTags(c, c.Conn)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	result := make([]map[string]any, len(tags))
	for i, tag := range tags {
		result[i] = map[string]any{
			"idtag":       tag.Tag.ID,
			"name":        tag.Name,
			"description": tag.Description,
			"post_count":  tag.PostCount,
		}
	}

	var res ResponseData
	res.WriteJson(result, c.Perf)
	return res
}

func CreateTag(c *RequestContext) ResponseData {
	form, err := c.GetFormValues()
	if err != nil {
		return c.RejectRequest(http.StatusBadRequest, "bad form data")
	}
	name := form.Get("name")

	if len(name) == 0 {
		return c.RejectRequest(http.StatusBadRequest, "tag name cannot be empty")
	}
	if len(name) > 20 {
		return c.RejectRequest(http.StatusBadRequest, "tag name cannot exceed 20 characters")
	}

	tag, err := nddata.CreateTag(c, c.Conn, name)
	if err != nil {
		if errors.Is(err, nddata.ErrTagExists) {
			return c.RejectRequest(http.StatusBadRequest, "tag already exists")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]any{
		"status":  "ok",
		"idtag":   tag.ID,
		"name":    tag.Name,
		"message": "tag created successfully",
	}, c.Perf)
	return res
}

func PostsByTag(c *RequestContext) ResponseData {
	tagID := c.PathParamInt("id")

	// A tag with no posts is an empty list; a tag that doesn't exist is a 404.
	_, err := nddata.FetchTag(c, c.Conn, tagID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return c.RejectRequest(http.StatusNotFound, "tag not found")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	posts, err := nddata.FetchPosts(c, c.Conn, nddata.PostsQuery{TagID: tagID})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(makePostListJson(posts), c.Perf)
	return res
}

// Fetches nothing; just turns a missing post into the response to send.
func requirePost(c *RequestContext, postID int) *ResponseData {
	_, err := nddata.FetchPost(c, c.Conn, postID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			res := c.RejectRequest(http.StatusNotFound, "post not found")
			return &res
		}
		res := c.ErrorResponse(http.StatusInternalServerError, err)
		return &res
	}
	return nil
}
