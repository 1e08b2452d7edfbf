package services

import "github.com/eduschool/backend/libs/auth/middleware"

// Client-facing messages
const (
	MsgCredentialsRequired = "Email и пароль обязательны"
	MsgPasswordTooShort    = "Пароль должен быть минимум 6 символов"
	MsgPasswordTooLong     = "Пароль не должен превышать 72 байта"
	MsgUsernameTooLong     = "Имя пользователя не должно превышать 150 символов"
	MsgEmailTooLong        = "Email не должен превышать 254 символа"
	MsgInvalidEmail        = "Некорректный email"
	MsgEmailTaken          = "Пользователь с таким email уже существует"
	MsgUsernameTaken       = "Пользователь с таким именем уже существует"
	MsgInvalidCredentials  = "Неверный email или пароль"
	MsgAuthRequired        = middleware.AuthRequiredMessage
	MsgCourseNotFound      = "Курс не найден"
	MsgLessonNotFound      = "Урок не найден"
	MsgInvalidStatus       = "Недопустимый статус"
	MsgNegativeVideo       = "Прогресс видео не может быть отрицательным"
)
