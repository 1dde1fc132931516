package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/s/levelup/internal/models"
)

var (
	// ErrAlreadyInCart - курс уже лежит в корзине. Не фатально,
	// хендлер сообщает об этом клиенту как success=false.
	ErrAlreadyInCart = errors.New("course already in cart")

	// ErrNotInCart - попытка убрать курс, которого в корзине нет.
	ErrNotInCart = errors.New("course not in cart")
)

// Item - снимок курса на момент добавления в корзину. Цена дальше
// живет своей жизнью: изменение каталога корзину не трогает.
type Item struct {
	CourseID    uint            `json:"course_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Duration    string          `json:"duration"`
	ImagePath   string          `json:"image_path"`
	AddedAt     time.Time       `json:"added_at"`
}

// Cart живет только в сессии, в базу не пишется.
type Cart struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Snapshot - неизменяемое представление корзины для отображения
// и для передачи в checkout.
type Snapshot struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func New() *Cart {
	return &Cart{Total: decimal.Zero}
}

// Add снимает с курса снапшот и кладет его в корзину.
func (c *Cart) Add(course models.Course) error {
	for _, it := range c.Items {
		if it.CourseID == course.ID {
			return ErrAlreadyInCart
		}
	}

	c.Items = append(c.Items, Item{
		CourseID:    course.ID,
		Title:       course.Title,
		Description: course.Description,
		Price:       course.Price,
		Duration:    course.Duration,
		ImagePath:   course.ImagePath,
		AddedAt:     time.Now(),
	})
	c.recompute()
	return nil
}

func (c *Cart) Remove(courseID uint) error {
	for i, it := range c.Items {
		if it.CourseID == courseID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.recompute()
			return nil
		}
	}
	return ErrNotInCart
}

func (c *Cart) Clear() {
	c.Items = nil
	c.Total = decimal.Zero
}

func (c *Cart) Snapshot() Snapshot {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	return Snapshot{Items: items, Total: c.Total, Count: len(items)}
}

// Итог считается только из снапшот-цен, никогда из живых цен каталога
// и никогда из данных клиента.
func (c *Cart) recompute() {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price)
	}
	c.Total = total
}
