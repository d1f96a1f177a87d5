package i18n

import (
	"strconv"
	"strings"
)

type EmailContent struct {
	Subject string
	Text    string
	HTML    string
}

type emailStrings struct {
	ResetCodeSubject string
	ResetCodeText    string
	ResetCodeHTML    string

	SignInSubject string
	SignInText    string
	SignInHTML    string

	UnknownLocation string
	UnknownDevice   string
}

var emailTranslations = map[string]emailStrings{
	"en": {
		ResetCodeSubject: "Govent password reset code",
		ResetCodeText: "Dear Govent member,\n\n" +
			"Enter the 6-digit code below on the password reset page:\n\n{code}\n\n" +
			"The code expires in {minutes} minutes. If you did not request a reset, ignore this email.\n\n" +
			"Govent support team",
		ResetCodeHTML: "<p>Dear Govent member,</p>" +
			"<p>Enter the 6-digit code below on the password reset page:</p>" +
			"<p><strong style=\"font-size:32px;letter-spacing:8px;\">{code}</strong></p>" +
			"<p>The code expires in <strong>{minutes} minutes</strong>.</p>" +
			"<p>If you did not request a password reset, ignore this email.</p>",

		SignInSubject: "New sign-in to your Govent account",
		SignInText: "Hi {email},\n\nA new sign-in occurred on {time}.\n\n" +
			"IP: {ip}\nLocation: {location}\nDevice: {device}\n\n" +
			"If this wasn't you, please reset your password.",
		SignInHTML: "<p>Hi {email},</p>" +
			"<p>A new sign-in occurred on <strong>{time}</strong>.</p>" +
			"<ul><li><strong>IP:</strong> {ip}</li>" +
			"<li><strong>Location:</strong> {location}</li>" +
			"<li><strong>Device:</strong> {device}</li></ul>" +
			"<p>If this wasn't you, please reset your password.</p>",

		UnknownLocation: "Unknown location",
		UnknownDevice:   "Unknown device",
	},
	"zh": {
		ResetCodeSubject: "Govent - 密碼重設驗證碼",
		ResetCodeText: "親愛的 Govent 會員您好，\n\n" +
			"請在重設密碼頁面輸入以下 6 位數驗證碼：\n\n{code}\n\n" +
			"驗證碼將於 {minutes} 分鐘後過期。如果您沒有要求重設密碼，請忽略此郵件。\n\n" +
			"Govent 客服團隊",
		ResetCodeHTML: "<p>親愛的 Govent 會員您好，</p>" +
			"<p>請輸入以下 6 位數驗證碼來重設您的密碼：</p>" +
			"<p><strong style=\"font-size:32px;letter-spacing:8px;\">{code}</strong></p>" +
			"<p>此驗證碼將在 <strong>{minutes} 分鐘後</strong> 過期。</p>" +
			"<p>如果您沒有要求重設密碼，請忽略此郵件。</p>" +
			"<p>如有任何問題，請聯繫 Govent 客服團隊。</p>",

		SignInSubject: "您的 Govent 帳號有新的登入",
		SignInText: "{email} 您好，\n\n您的帳號於 {time} 有新的登入。\n\n" +
			"IP：{ip}\n位置：{location}\n裝置：{device}\n\n" +
			"如果這不是您本人，請立即重設密碼。",
		SignInHTML: "<p>{email} 您好，</p>" +
			"<p>您的帳號於 <strong>{time}</strong> 有新的登入。</p>" +
			"<ul><li><strong>IP：</strong>{ip}</li>" +
			"<li><strong>位置：</strong>{location}</li>" +
			"<li><strong>裝置：</strong>{device}</li></ul>" +
			"<p>如果這不是您本人，請立即重設密碼。</p>",

		UnknownLocation: "未知位置",
		UnknownDevice:   "未知裝置",
	},
}

func stringsFor(locale string) emailStrings {
	if s, ok := emailTranslations[locale]; ok {
		return s
	}
	return emailTranslations[DefaultLocale]
}

func ResetCodeEmail(locale, code string, minutes int) EmailContent {
	s := stringsFor(locale)
	repl := strings.NewReplacer("{code}", code, "{minutes}", strconv.Itoa(minutes))
	return EmailContent{
		Subject: s.ResetCodeSubject,
		Text:    repl.Replace(s.ResetCodeText),
		HTML:    repl.Replace(s.ResetCodeHTML),
	}
}

func SignInAlertEmail(locale, email, timeStr, ip, location, device string) EmailContent {
	s := stringsFor(locale)
	if strings.TrimSpace(location) == "" {
		location = s.UnknownLocation
	}
	if strings.TrimSpace(device) == "" {
		device = s.UnknownDevice
	}
	repl := strings.NewReplacer(
		"{email}", email,
		"{time}", timeStr,
		"{ip}", ip,
		"{location}", location,
		"{device}", device,
	)
	return EmailContent{
		Subject: s.SignInSubject,
		Text:    repl.Replace(s.SignInText),
		HTML:    repl.Replace(s.SignInHTML),
	}
}
