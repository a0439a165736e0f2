package dto

import "io"

// PhotoFile is an uploaded image handed from the delivery layer to services.
type PhotoFile struct {
	Reader   io.Reader
	FileName string
	Size     int64
}

type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
