package service

import (
	"strings"

	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/repository"
	"github.com/kmshistory/kmshistory-v2/internal/util"
	"go.uber.org/zap"
)

type TopicService struct {
	topicRepo *repository.TopicRepository
	logger    *zap.Logger
}

func NewTopicService(topicRepo *repository.TopicRepository, logger *zap.Logger) *TopicService {
	return &TopicService{topicRepo: topicRepo, logger: logger}
}

type TopicInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *TopicService) List() ([]model.Topic, error) {
	return s.topicRepo.FindAll()
}

func (s *TopicService) Get(id uint) (*model.Topic, error) {
	topic, err := s.topicRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, util.ErrTopicNotFound
	}
	return topic, nil
}

func (s *TopicService) Create(input TopicInput) (*model.Topic, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, util.ErrTopicNameRequired
	}
	existing, err := s.topicRepo.FindByName(name, 0)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, util.ErrTopicNameTaken
	}

	topic := &model.Topic{Name: name, Description: strings.TrimSpace(input.Description)}
	if err := s.topicRepo.Create(topic); err != nil {
		return nil, err
	}
	s.logger.Info("topic created", zap.Uint("topic_id", topic.ID), zap.String("name", topic.Name))
	return topic, nil
}

func (s *TopicService) Update(id uint, input TopicInput) (*model.Topic, error) {
	topic, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, util.ErrTopicNameRequired
	}
	// 名称唯一性检查时排除自身
	existing, err := s.topicRepo.FindByName(name, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, util.ErrTopicNameTaken
	}

	topic.Name = name
	topic.Description = strings.TrimSpace(input.Description)
	if err := s.topicRepo.Update(topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// Delete 删除标签,仍被题目引用的标签不允许删除
func (s *TopicService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	refs, err := s.topicRepo.CountQuestionRefs(id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return util.ErrTopicInUse
	}
	if err := s.topicRepo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("topic deleted", zap.Uint("topic_id", id))
	return nil
}
