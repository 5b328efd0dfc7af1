package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	app "ivision/internal/application"
	"ivision/internal/domain/entity"
	"ivision/internal/infrastructure/imageio"
	"ivision/internal/infrastructure/report"
)

const (
	msgStart = `👋 Привет! Я распознаю текст, классифицирую изображения и ищу на них объекты.

📸 Отправьте мне фото или картинку файлом.

📋 Команды:
/ocr — распознать текст (по умолчанию)
/text — найти области текста
/classify — классифицировать изображение
/objects — найти объекты
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Выберите запрос командой /ocr, /text, /classify или /objects
2️⃣ Отправьте фото или картинку файлом
3️⃣ Вы получите результат: текст + фото с подсветкой найденных областей

💡 Файлом картинка приходит без сжатия, так текст распознаётся лучше.`

	msgAwaitingPhoto   = "📸 Отправьте изображение для запроса «%s»."
	msgCancelled       = "❌ Операция отменена."
	msgSendPhoto       = "📸 Пожалуйста, отправьте изображение. Текущий запрос: «%s»."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgNothingFound    = "🤷 Ничего не найдено."
	msgUnsupported     = "⚠️ Движок %s не поддерживает запрос «%s»."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте другое фото."
)

// Telegram ограничивает длину сообщения 4096 символами.
const maxMessageLength = 4096

// botAPI часть tgbotapi.BotAPI, которой пользуется бот
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot представляет Telegram-бота
type Bot struct {
	api      botAPI
	token    string
	users    *app.UserService
	analysis *app.AnalysisService
	ocr      entity.OCROptions
	log      *slog.Logger

	// download скачивает файл по ID, подменяется в тестах
	download func(fileID string) ([]byte, error)
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, analysis *app.AnalysisService, ocr entity.OCROptions, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info("authorized on telegram", "account", api.Self.UserName)

	return newBot(api, token, users, analysis, ocr, log), nil
}

func newBot(api botAPI, token string, users *app.UserService, analysis *app.AnalysisService, ocr entity.OCROptions, log *slog.Logger) *Bot {
	b := &Bot{
		api:      api,
		token:    token,
		users:    users,
		analysis: analysis,
		ocr:      ocr,
		log:      log,
	}
	b.download = b.downloadFile
	return b
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.Error("get user", "user", msg.From.ID, "error", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото и картинок, отправленных файлом
	if fileID, ok := imageFileID(msg); ok {
		b.handleImage(ctx, msg, user, fileID)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgSendPhoto, user.Capability))
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	command := msg.Command()
	switch command {
	case "start":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "cancel":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(msg.Chat.ID, msgCancelled)

	case string(entity.CapabilityOCR), string(entity.CapabilityText), string(entity.CapabilityClassify), string(entity.CapabilityObjects):
		c := entity.Capability(command)
		if _, err := b.users.Select(ctx, user.ID, user.ChatID, c); err != nil {
			b.log.Error("select capability", "user", user.ID, "error", err)
			return
		}
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgAwaitingPhoto, c))

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// handleImage выполняет выбранный запрос над присланным изображением
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, user *entity.User, fileID string) {
	// ID запроса связывает записи лога одного изображения
	requestID := uuid.NewString()
	log := b.log.With("request", requestID, "user", user.ID)

	// Устанавливаем состояние "обработка"
	b.setState(ctx, user, entity.StateProcessing)
	defer b.setState(ctx, user, entity.StateMainMenu)

	b.sendMessage(msg.Chat.ID, msgProcessing)

	data, err := b.download(fileID)
	if err != nil {
		log.Error("download image", "file", fileID, "error", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	img, err := b.analysis.LoadBytes(data)
	if err != nil {
		log.Warn("invalid image", "bytes", len(data), "error", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	result, err := b.analysis.Run(ctx, img, user.Capability, app.RunOptions{OCR: b.ocr})
	if err != nil {
		log.Error("analyse image", "capability", user.Capability, "error", err)
		if errors.Is(err, entity.ErrUnsupportedCapability) || errors.Is(err, entity.ErrEngineUnavailable) {
			b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgUnsupported, b.analysis.Backend().Name(), user.Capability))
			return
		}
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	if result.Len() == 0 {
		b.sendMessage(msg.Chat.ID, msgNothingFound)
		return
	}

	log.Info("image analysed", "capability", result.Capability, "results", result.Len())

	b.sendMessage(msg.Chat.ID, truncate(strings.Join(report.Lines(result), "\n"), maxMessageLength))

	if result.Capability.HasBoxes() {
		if err := b.sendAnnotated(msg.Chat.ID, requestID, img, result); err != nil {
			log.Error("send annotated image", "error", err)
		}
	}
}

func (b *Bot) sendAnnotated(chatID int64, requestID string, img *entity.Image, result *entity.Report) error {
	decoded, err := imageio.Decode(img)
	if err != nil {
		return err
	}
	annotated, err := report.Annotate(decoded, result)
	if err != nil {
		return err
	}
	data, _, err := imageio.Encode(annotated, "png")
	if err != nil {
		return err
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: requestID + ".png", Bytes: data})
	_, err = b.api.Send(photo)
	return err
}

func (b *Bot) setState(ctx context.Context, user *entity.User, state entity.UserState) {
	if _, err := b.users.SetState(ctx, user.ID, user.ChatID, state); err != nil {
		b.log.Error("save user state", "user", user.ID, "error", err)
	}
}

// imageFileID возвращает файл с максимальным разрешением или картинку-документ
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	resp, err := http.Get(file.Link(b.token))
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return buf.Bytes(), nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat", chatID, "error", err)
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
