package website

import (
	"errors"
	"net/http"

	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/nddata"
)

const messageDateFormat = "02.01.2006, 15:04:05"

func SendMessage(c *RequestContext) ResponseData {
	if c.CurrentUser.IsBanned {
		return c.RejectRequest(http.StatusForbidden, "banned users cannot send messages")
	}

	recipient, errRes := fetchTargetUser(c)
	if errRes != nil {
		return *errRes
	}
	if recipient.IsBanned {
		return c.RejectRequest(http.StatusForbidden, "cannot send a message to a banned user")
	}
	if recipient.ID == c.CurrentUser.ID {
		return c.RejectRequest(http.StatusBadRequest, "cannot send a message to yourself")
	}

	form, err := c.GetFormValues()
	if err != nil {
		return c.RejectRequest(http.StatusBadRequest, "bad form data")
	}
	text := form.Get("text")

	if len(text) == 0 {
		return c.RejectRequest(http.StatusBadRequest, "message cannot be empty")
	}
	if len(text) > 5000 {
		return c.RejectRequest(http.StatusBadRequest, "message cannot exceed 5000 characters")
	}

	message, err := nddata.SendMessage(c, c.Conn, c.CurrentUser.ID, recipient.ID, text)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]any{
		"status":  "ok",
		"id":      message.ID,
		"message": "message sent successfully",
		"date":    message.SentAt.Format(messageDateFormat),
	}, c.Perf)
	return res
}

func Conversation(c *RequestContext) ResponseData {
	otherUserID := c.PathParamInt("id")

	_, err := nddata.FetchUser(c, c.Conn, otherUserID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return c.RejectRequest(http.StatusNotFound, "user not found")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	messages, err := nddata.FetchConversation(c, c.Conn, c.CurrentUser.ID, otherUserID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	result := make([]map[string]any, len(messages))
	for i, message := range messages {
		result[i] = map[string]any{
			"id":          message.PrivateMessage.ID,
			"user_from":   message.SenderID,
			"user_to":     message.RecipientID,
			"sender_name": message.SenderName,
			"text":        message.Body,
			"date":        message.SentAt.Format(messageDateFormat),
		}
	}

	var res ResponseData
	res.WriteJson(result, c.Perf)
	return res
}

func ConversationList(c *RequestContext) ResponseData {
	conversations, err := nddata.FetchConversations(c, c.Conn, c.CurrentUser.ID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	result := make([]map[string]any, len(conversations))
	for i, conv := range conversations {
		result[i] = map[string]any{
			"id":                conv.UserID,
			"username":          conv.Username,
			"last_message_date": conv.LastMessageDate.Format(messageDateFormat),
		}
	}

	var res ResponseData
	res.WriteJson(result, c.Perf)
	return res
}
