// Package vk provides an HTTP client for the parts of the VK API used to
// publish a photo on a community wall.
package vk

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Credentials identify the caller and the destination community.
type Credentials struct {
	AccessToken string
	GroupID     int
	APIVersion  float64
}

// Version renders APIVersion the way the API expects it in the v parameter.
func (c Credentials) Version() string {
	return strconv.FormatFloat(c.APIVersion, 'f', -1, 64)
}

// UploadTarget is a one-time endpoint for a single photo transfer.
type UploadTarget struct {
	UploadURL string `json:"upload_url"`
}

// UploadReceipt is what the upload server returns for a transferred photo.
// Photo is opaque and must be passed back unchanged.
type UploadReceipt struct {
	Server int    `json:"server"`
	Photo  string `json:"photo"`
	Hash   string `json:"hash"`
}

// RegisteredAsset is a photo saved to the community.
type RegisteredAsset struct {
	ID      int `json:"id"`
	OwnerID int `json:"owner_id"`
}

// Attachment returns the reference used to attach the photo to a post.
func (a RegisteredAsset) Attachment() string {
	return fmt.Sprintf("photo%d_%d", a.OwnerID, a.ID)
}

// PublishedPost is the result of a wall post.
type PublishedPost struct {
	PostID int `json:"post_id"`
}

// OwnerID returns the owner reference for a community acting as author.
// Communities are addressed by the negation of their id.
func OwnerID(groupID int) int {
	return -groupID
}

// apiError is the error object embedded in method responses.
type apiError struct {
	Code int    `json:"error_code"`
	Msg  string `json:"error_msg"`
}

// envelope wraps every API method response. Exactly one of Response and
// Error is expected to be set.
type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *apiError       `json:"error"`
}

// uploadResponse is the upload server's answer. Error is either a string or
// an object depending on the failure.
type uploadResponse struct {
	UploadReceipt
	Error       json.RawMessage `json:"error"`
	ErrorDescr  string          `json:"error_descr"`
	ErrorReason string          `json:"error_reason"`
}
