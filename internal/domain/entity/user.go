package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// User представляет пользователя бота
type User struct {
	ID         int64      // Telegram User ID
	ChatID     int64      // Telegram Chat ID
	State      UserState  // Текущее состояние пользователя
	Capability Capability // Выбранный запрос для следующего фото
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:         userID,
		ChatID:     chatID,
		State:      StateMainMenu,
		Capability: CapabilityOCR,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// Select выбирает запрос и переводит пользователя в ожидание фото.
func (u *User) Select(c Capability) {
	u.Capability = c
	u.State = StateAwaitingPhoto
}
