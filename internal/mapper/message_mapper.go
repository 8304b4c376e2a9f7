package mapper

import (
	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/model"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	return &entity.Message{
		Id:          msg.Id,
		SenderId:    msg.SenderId,
		SenderName:  msg.SenderName,
		SenderEmail: msg.SenderEmail,
		SenderRole:  msg.SenderRole,
		Message:     msg.Message,
		UserId:      msg.UserId,
		IsRead:      msg.IsRead,
		ReadAt:      msg.ReadAt,
		Timestamp:   msg.Timestamp,
	}
}

func (m *MessageMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	return &model.Message{
		Id:          msg.Id,
		SenderId:    msg.SenderId,
		SenderName:  msg.SenderName,
		SenderEmail: msg.SenderEmail,
		SenderRole:  msg.SenderRole,
		Message:     msg.Message,
		UserId:      msg.UserId,
		IsRead:      msg.IsRead,
		ReadAt:      msg.ReadAt,
		Timestamp:   msg.Timestamp,
	}
}

func (m *MessageMapper) MessagesToEntities(models []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(models))
	for i, msg := range models {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}

func (m *MessageMapper) MessageToResponse(msg *entity.Message) dto.MessageResponse {
	return dto.MessageResponse{
		Id:          msg.Id,
		SenderId:    msg.SenderId,
		SenderName:  msg.SenderName,
		SenderEmail: msg.SenderEmail,
		SenderRole:  msg.SenderRole,
		Message:     msg.Message,
		UserId:      msg.UserId,
		IsRead:      msg.IsRead,
		ReadAt:      msg.ReadAt,
		Timestamp:   msg.Timestamp,
	}
}

func (m *MessageMapper) MessagesToResponses(entities []*entity.Message) []dto.MessageResponse {
	responses := make([]dto.MessageResponse, len(entities))
	for i, msg := range entities {
		responses[i] = m.MessageToResponse(msg)
	}
	return responses
}
