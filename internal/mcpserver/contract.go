package mcpserver

// FileFormatContract describes the persisted appointment file so LLM
// consumers can read or hand-edit it safely.
const FileFormatContract = `# apptcal File Format

The appointment book is a plain UTF-8 text file (default name
` + "`" + `saved_appointments.txt` + "`" + `) with one appointment per line and no header:

` + "```" + `
<title>,<YYYY-MM-DD>,<HH:mm>,<HH:mm>
` + "```" + `

## Rules

1. Exactly four comma-separated fields: title, date, start time, end time.
2. **Title** must be non-empty and a single line. It cannot contain a comma; there is no escaping.
3. **Date** is ISO-8601 ` + "`" + `YYYY-MM-DD` + "`" + `.
4. **Times** are 24-hour, zero-padded ` + "`" + `HH:mm` + "`" + ` (` + "`" + `09:00` + "`" + `, never ` + "`" + `9:00` + "`" + `).
5. **Start must be strictly before end.** Appointments cannot span midnight.
6. Line order is display order. Duplicates and overlapping times are allowed.
7. Lines that break these rules are skipped (and logged) when the file is loaded.

## Example

` + "```" + `
Dentist,2024-05-01,09:00,09:30
Team standup,2024-05-02,10:00,10:15
` + "```" + `

Prefer the add_appointment and remove_appointment tools over editing the
file directly; they validate input and keep list positions consistent.
`
