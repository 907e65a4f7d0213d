package repository

import (
	"errors"

	"github.com/kmshistory/kmshistory-v2/internal/model"

	"gorm.io/gorm"
)

type TopicRepository struct {
	DB *gorm.DB
}

func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{DB: db}
}

func (r *TopicRepository) FindAll() ([]model.Topic, error) {
	var topics []model.Topic
	err := r.DB.Order("name asc").Find(&topics).Error
	return topics, err
}

func (r *TopicRepository) FindByID(id uint) (*model.Topic, error) {
	var topic model.Topic
	err := r.DB.First(&topic, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *TopicRepository) FindByIDs(ids []uint) ([]model.Topic, error) {
	var topics []model.Topic
	if len(ids) == 0 {
		return topics, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&topics).Error
	return topics, err
}

// FindByName 名称查重不区分大小写，excludeID 给更新场景排除自身
func (r *TopicRepository) FindByName(name string, excludeID uint) (*model.Topic, error) {
	var topic model.Topic
	query := r.DB.Where("LOWER(name) = LOWER(?)", name)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.First(&topic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *TopicRepository) Create(topic *model.Topic) error {
	return r.DB.Create(topic).Error
}

func (r *TopicRepository) Update(topic *model.Topic) error {
	return r.DB.Save(topic).Error
}

func (r *TopicRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Topic{}, id).Error
}

// CountQuestionRefs 统计还挂着该主题的题目数，删除前的占用检查用
func (r *TopicRepository) CountQuestionRefs(topicID uint) (int64, error) {
	var count int64
	err := r.DB.Table("question_topic_links").Where("topic_id = ?", topicID).Count(&count).Error
	return count, err
}
