package preview

const shellPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>mailcraft preview</title>
  <script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"></script>
  <style>
    html, body { margin: 0; height: 100%; background: #131314; }
    iframe { border: 0; width: 100%; height: 100%; background: #fff; }
  </style>
</head>
<body data-signals="{html: ''}" data-init="@get('/events')">
  <iframe title="template" sandbox="allow-same-origin" data-attr:srcdoc="$html"></iframe>
</body>
</html>
`
