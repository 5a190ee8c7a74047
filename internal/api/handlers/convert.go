package handlers

import (
	"time"

	"github.com/your-org/photoflow/internal/models"
	"github.com/your-org/photoflow/pkg/dto"
)

func toPersonResponse(p *models.Person) dto.PersonResponse {
	return dto.PersonResponse{
		ID:         p.ID,
		Name:       p.Name,
		AvatarURL:  p.AvatarURL,
		ImageCount: p.ImageCount,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

func toImageResponse(img *models.Image) dto.ImageResponse {
	resp := dto.ImageResponse{
		ID:        img.ID,
		URL:       img.URL,
		Pathname:  img.Pathname,
		Caption:   img.Caption,
		Width:     img.Width,
		Height:    img.Height,
		FileSize:  img.FileSize,
		FileType:  img.FileType,
		CreatedAt: img.CreatedAt.Format(time.RFC3339),
		PeopleIDs: img.PeopleIDs,
		AlbumIDs:  img.AlbumIDs,
	}
	if img.TakenAt != nil {
		resp.TakenAt = img.TakenAt.Format(time.RFC3339)
	}
	return resp
}

func toAlbumResponse(a *models.Album) dto.AlbumResponse {
	return dto.AlbumResponse{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Kind:        string(a.Kind),
		CoverImage:  a.CoverImage,
		ImageCount:  a.ImageCount,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

func toJobResponse(j *models.SyncJob) dto.JobResponse {
	resp := dto.JobResponse{
		ID:         j.ID,
		Status:     string(j.Status),
		Progress:   j.Progress,
		ImageCount: j.ImageCount,
		Error:      j.Error,
		CreatedAt:  j.CreatedAt.Format(time.RFC3339),
	}
	if j.StartedAt != nil {
		resp.StartedAt = j.StartedAt.Format(time.RFC3339)
	}
	if j.FinishedAt != nil {
		resp.FinishedAt = j.FinishedAt.Format(time.RFC3339)
	}
	return resp
}
