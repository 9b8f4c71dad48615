package model

import "fmt"

// PlaceholderTemplate is shown before anything has been generated. While the
// current template is exactly this value, submissions start from scratch.
const PlaceholderTemplate = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#131314;color:#e3e3e3;font-family:sans-serif;">
  <table role="presentation" width="100%" height="100%" cellpadding="0" cellspacing="0" border="0">
    <tr>
      <td align="center" valign="middle" style="padding:20px;">
        <h1 style="color:#a8c7fa;">Welcome to mailcraft</h1>
        <p>Describe the email you want to build in the chat.</p>
      </td>
    </tr>
  </table>
</body>
</html>`

const (
	ConfirmationMessage   = "I've generated the email template based on your request. You can view the code and preview in the workspace."
	GenericFailureMessage = "I encountered an error generating the template. Please check your API key."
)

// SystemInstruction tells the model how to write email HTML.
const SystemInstruction = `
You are an expert email engineer who designs polished, production-ready HTML email templates.

Generate or modify HTML email code that renders correctly in every major client (Outlook, Gmail, Apple Mail, Yahoo Mail).

### 1. Structure
- Lay out the email with nested <table>, <tr> and <td> elements. Never use div, flexbox or grid for layout.
- Put all structural and presentational CSS inline (style="...").
- Use a <style> block only for media queries and pseudo-classes such as :hover.
- Include the usual client resets (border-collapse, mso-line-height-rule, -webkit-text-size-adjust).
- Give every image display:block and meaningful alt text.

### 2. Responsiveness
- Desktop: a centered wrapper table with a max-width of 600px or 640px, centered with align="center" and margin: 0 auto.
- Mobile (max-width: 600px):
  - Force the wrapper table to width: 100% !important.
  - Remove side padding on the outer wrapper cells (padding-left: 0 !important; padding-right: 0 !important;).
  - Stack multi-column rows by setting cells to display: block; width: 100% !important;.
  - Scale images with width: 100% !important; height: auto !important;.
  - Shrink large headings (30px and up down to about 24px) through classes and !important overrides.

### 3. Design
- Build multi-column grids from nested tables.
- Prefer web-safe font stacks with fallbacks.
- Pick colors that survive dark-mode readers.
- Use image URLs the user provides; otherwise use placeholders such as https://placehold.co/600x400/222/fff?text=Image.
- Button hover effects may live in the <style> block (for example .btn:hover { ... }).

### 4. Editing
- When modifying an existing template keep its look unless a redesign is requested.
- Change only the requested sections and keep the surrounding markup intact.

### 5. Output
- Return ONLY the raw HTML.
- Do NOT wrap it in Markdown code fences.
- No preamble, no closing remarks.
- The result must be a complete <!DOCTYPE html> document.
`

// BuildPrompt returns the text sent to the model. Without prior HTML the
// instruction is sent as is; otherwise it is wrapped in an edit request that
// embeds the current template.
func BuildPrompt(instruction, priorHTML string) string {
	if priorHTML == "" {
		return instruction
	}
	return fmt.Sprintf(`I have an existing HTML email template. Please modify it based on the following instruction: "%s".

Here is the current HTML code:
%s

Return the fully updated HTML code.`, instruction, priorHTML)
}
