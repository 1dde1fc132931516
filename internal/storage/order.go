package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/s/levelup/internal/cart"
	"github.com/s/levelup/internal/models"
)

var (
	// ErrInvalidCart - снимок корзины не годится для заказа:
	// пустой, с отрицательной ценой или с расходящимся итогом.
	ErrInvalidCart = errors.New("invalid cart snapshot")

	// ErrInvalidTransition - допустимы только переходы
	// pending->completed и pending->cancelled.
	ErrInvalidTransition = errors.New("invalid order status transition")
)

type OrderStore struct {
	DB *gorm.DB
}

// CreateFromCart превращает снимок корзины в заказ с позициями.
// Все вставки идут в одной транзакции: либо заказ виден целиком
// (строка заказа + все позиции), либо его нет вообще. Цены берутся
// из снапшота, не из каталога.
func (s *OrderStore) CreateFromCart(ctx context.Context, userID uint, snap cart.Snapshot, status models.OrderStatus) (*models.Order, error) {
	if len(snap.Items) == 0 {
		return nil, ErrInvalidCart
	}
	if !status.Valid() {
		return nil, ErrInvalidTransition
	}

	total := decimal.Zero
	for _, it := range snap.Items {
		if it.CourseID == 0 || it.Price.IsNegative() {
			return nil, ErrInvalidCart
		}
		total = total.Add(it.Price)
	}
	// Итог считаем сами; снапшот с расходящейся суммой не принимаем.
	if !total.Equal(snap.Total) {
		return nil, ErrInvalidCart
	}

	var created models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order := models.Order{
			UserID:      userID,
			TotalAmount: total,
			Status:      status,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(snap.Items))
		for _, it := range snap.Items {
			items = append(items, models.OrderItem{
				OrderID:  order.ID,
				CourseID: it.CourseID,
				Price:    it.Price,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		// Перечитываем внутри той же транзакции, чтобы вернуть
		// заказ ровно в том виде, в котором он закоммитится.
		return tx.Preload("Items").First(&created, order.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *OrderStore) Find(id uint) (*models.Order, error) {
	var order models.Order
	if err := s.DB.Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderStore) ByUser(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// DetailedUser - данные покупателя в развернутом заказе.
type DetailedUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DetailedItem - позиция заказа с денормализованными данными курса.
// CourseID остается нормализованной ссылкой.
type DetailedItem struct {
	ID       uint            `json:"id"`
	CourseID uint            `json:"course_id"`
	Price    decimal.Decimal `json:"price"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	ImagePath   string `json:"image_path"`
}

type DetailedOrder struct {
	ID          uint               `json:"id"`
	UserID      uint               `json:"user_id"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Status      models.OrderStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`

	User  DetailedUser   `json:"user"`
	Items []DetailedItem `json:"items"`
}

// Detailed собирает заказ вместе с покупателем и данными курсов -
// для страницы заказа и письма-подтверждения.
func (s *OrderStore) Detailed(id uint) (*DetailedOrder, error) {
	var order models.Order
	err := s.DB.Preload("Items.Course").Preload("User").First(&order, id).Error
	if err != nil {
		return nil, err
	}

	out := DetailedOrder{
		ID:          order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt,
		User: DetailedUser{
			ID:    order.User.ID,
			Name:  order.User.Name,
			Email: order.User.Email,
		},
	}
	for _, it := range order.Items {
		out.Items = append(out.Items, DetailedItem{
			ID:          it.ID,
			CourseID:    it.CourseID,
			Price:       it.Price,
			Title:       it.Course.Title,
			Description: it.Course.Description,
			Duration:    it.Course.Duration,
			ImagePath:   it.Course.ImagePath,
		})
	}
	return &out, nil
}

// UpdateStatus переводит заказ из pending в конечный статус и
// возвращает обновленный заказ.
func (s *OrderStore) UpdateStatus(id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() || !status.Terminal() {
		return nil, ErrInvalidTransition
	}

	res := s.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Либо заказа нет, либо он уже в конечном статусе.
		var exists int64
		if err := s.DB.Model(&models.Order{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, ErrInvalidTransition
	}

	return s.Find(id)
}

// TotalRevenue - сумма по завершенным заказам. Без заказов это ноль,
// а не ошибка.
func (s *OrderStore) TotalRevenue() (decimal.Decimal, error) {
	row := s.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").
		Row()

	var revenue decimal.Decimal
	if err := row.Scan(&revenue); err != nil {
		return decimal.Zero, err
	}
	return revenue, nil
}

func (s *OrderStore) All() ([]models.Order, error) {
	var orders []models.Order
	if err := s.DB.Preload("Items").Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderStore) Count() (int64, error) {
	var count int64
	err := s.DB.Model(&models.Order{}).Count(&count).Error
	return count, err
}
