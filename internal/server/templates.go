package server

import (
	"encoding/json"
	"html/template"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<title>学习卡片生成器</title>
<style>
body { font-family: sans-serif; max-width: 640px; margin: 40px auto; padding: 0 16px; }
.card { border: 1px solid #ddd; border-radius: 8px; padding: 24px; }
button { padding: 8px 24px; }
</style>
</head>
<body>
<h1>学习卡片生成器</h1>
<div class="card">
<p>上传一张笔记或讲义照片，自动生成精炼学习卡片。</p>
<form action="/upload" method="post" enctype="multipart/form-data">
<p><input type="file" name="image" accept="image/*" required></p>
<p><button type="submit">生成卡片</button></p>
</form>
</div>
</body>
</html>
`))

var resultTmpl = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<title>学习卡片</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 40px auto; padding: 0 16px; }
.card { border: 1px solid #ddd; border-radius: 8px; padding: 24px; margin-bottom: 24px; }
img { max-width: 320px; border: 1px solid #eee; }
li { margin: 4px 0; }
.example { color: #666; }
</style>
</head>
<body>
<h1>学习卡片</h1>
<div class="card">
<img src="{{.ImageURL}}" alt="上传的笔记">
</div>
<div class="card">
<h2>精炼学习点</h2>
<ol>
{{range .Result.LearnPoints}}<li>{{.}}</li>
{{end}}</ol>
</div>
<div class="card">
<h2>容易混淆的知识点</h2>
<ul>
{{range .Result.Confusions}}<li>{{.Left}} vs {{.Right}}：{{.Explain}}{{if .Example}}<div class="example">例子：{{.Example}}</div>{{end}}</li>
{{end}}</ul>
</div>
{{if .PDFURL}}<p><a href="{{.PDFURL}}">下载 PDF 卡片</a></p>{{end}}
<p><a href="/">再来一张</a></p>
</body>
</html>
`))
