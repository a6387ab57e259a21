package smtp

import (
	"bytes"
	"html/template"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;font-family:'Segoe UI',Tahoma,Geneva,Verdana,sans-serif;background-color:#f4f6f8;">
  <div style="max-width:600px;margin:40px auto;background:#ffffff;border-radius:16px;overflow:hidden;box-shadow:0 10px 30px rgba(0,0,0,0.08);">
    <div style="background:linear-gradient(135deg,#2c3e50 0%,#3498db 100%);padding:36px 30px;text-align:center;">
      <h1 style="color:#ffffff;margin:0;font-size:26px;font-weight:700;">&#1606;&#1608;&#1585; &#1575;&#1604;&#1602;&#1585;&#1570;&#1606;</h1>
      <p style="color:#ecf0f1;margin:8px 0 0;font-size:15px;">Noor Al Quran</p>
    </div>
    <div style="padding:36px 30px;text-align:center;">
      <h2 style="color:#2c3e50;margin:0 0 10px;font-size:22px;">Assalamu Alaikum{{if .Name}}, {{.Name}}{{end}}!</h2>
      <p style="color:#7f8c8d;margin:0 0 24px;font-size:15px;line-height:1.6;">
        To complete your verification, please use the code below:
      </p>
      <div style="background:#f8f9fa;border:2px solid #3498db;border-radius:12px;padding:26px;margin:0 0 24px;">
        <span style="font-size:38px;font-weight:800;letter-spacing:8px;color:#2c3e50;font-family:'Courier New',monospace;">{{.Code}}</span>
      </div>
      <p style="color:#95a5a6;margin:0 0 8px;font-size:14px;">
        This code will expire in <strong style="color:#e74c3c;">{{.ExpiryMinutes}} minutes</strong>.
      </p>
      <p style="color:#95a5a6;margin:0;font-size:13px;">
        If you didn't request this verification code, please ignore this email.
      </p>
    </div>
    <div style="padding:18px 30px;border-top:1px solid #ecf0f1;text-align:center;">
      <p style="color:#bdc3c7;margin:0;font-size:12px;">Noor Al Quran Team</p>
    </div>
  </div>
</body>
</html>`))

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;font-family:'Segoe UI',Tahoma,Geneva,Verdana,sans-serif;background-color:#f4f6f8;">
  <div style="max-width:600px;margin:40px auto;background:#ffffff;border-radius:16px;overflow:hidden;box-shadow:0 10px 30px rgba(0,0,0,0.08);">
    <div style="background:linear-gradient(135deg,#7f1d1d 0%,#e74c3c 100%);padding:36px 30px;text-align:center;">
      <h1 style="color:#ffffff;margin:0;font-size:26px;font-weight:700;">&#1606;&#1608;&#1585; &#1575;&#1604;&#1602;&#1585;&#1570;&#1606;</h1>
      <p style="color:#fdecea;margin:8px 0 0;font-size:15px;">Password Reset</p>
    </div>
    <div style="padding:36px 30px;text-align:center;">
      <h2 style="color:#2c3e50;margin:0 0 10px;font-size:22px;">Assalamu Alaikum{{if .Name}}, {{.Name}}{{end}}!</h2>
      <p style="color:#7f8c8d;margin:0 0 24px;font-size:15px;line-height:1.6;">
        We received a request to reset your password. Use this code:
      </p>
      <div style="background:#f8f9fa;border:2px solid #e74c3c;border-radius:12px;padding:26px;margin:0 0 24px;">
        <span style="font-size:38px;font-weight:800;letter-spacing:8px;color:#2c3e50;font-family:'Courier New',monospace;">{{.Code}}</span>
      </div>
      <p style="color:#95a5a6;margin:0 0 8px;font-size:14px;">
        This code will expire in <strong style="color:#e74c3c;">{{.ExpiryMinutes}} minutes</strong>.
      </p>
      <p style="color:#95a5a6;margin:0;font-size:13px;">
        If you didn't request a password reset, please ignore this email and your password will remain unchanged.
      </p>
    </div>
    <div style="padding:18px 30px;border-top:1px solid #ecf0f1;text-align:center;">
      <p style="color:#bdc3c7;margin:0;font-size:12px;">Noor Al Quran Team</p>
    </div>
  </div>
</body>
</html>`))

type emailData struct {
	Name          string
	Code          string
	ExpiryMinutes int
}

func renderVerificationEmail(name, code string, expiryMinutes int) (string, error) {
	return render(verificationTmpl, emailData{Name: name, Code: code, ExpiryMinutes: expiryMinutes})
}

func renderPasswordResetEmail(name, code string, expiryMinutes int) (string, error) {
	return render(passwordResetTmpl, emailData{Name: name, Code: code, ExpiryMinutes: expiryMinutes})
}

func render(t *template.Template, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
