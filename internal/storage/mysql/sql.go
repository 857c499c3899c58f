package mysql

// -----------------------------------------------------------------------------
// booking_requests
// -----------------------------------------------------------------------------

const insertBookingSQL = `
INSERT INTO booking_requests
  (id, email, full_name, phone, message, package_id, package_name, guests, selected_date, status, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const bookingColumns = `
  id, email, full_name, phone, message, package_id, package_name,
  guests, selected_date, status, created_at, updated_at`

const getBookingSQL = `SELECT` + bookingColumns + `
FROM booking_requests
WHERE id = ?
`

// Status only moves forward; re-confirming just refreshes updated_at.
const updateBookingStatusSQL = `
UPDATE booking_requests
SET status = ?, updated_at = ?
WHERE id = ?
`

const listBookingsByEmailSQL = `SELECT` + bookingColumns + `
FROM booking_requests
WHERE email = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`

const listBookingsSQL = `SELECT` + bookingColumns + `
FROM booking_requests
ORDER BY created_at DESC, id DESC
LIMIT ?
`

// -----------------------------------------------------------------------------
// activity_logs (append-only)
// -----------------------------------------------------------------------------

const insertActivitySQL = `
INSERT INTO activity_logs
  (id, user_id, email, event_type, description, metadata, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

const activityColumns = `
  id, user_id, email, event_type, description, metadata, created_at`

const listActivitySQL = `SELECT` + activityColumns + `
FROM activity_logs
ORDER BY created_at DESC, id DESC
LIMIT ?
`

const listActivityByTypeSQL = `SELECT` + activityColumns + `
FROM activity_logs
WHERE event_type = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`

// -----------------------------------------------------------------------------
// notifications
// -----------------------------------------------------------------------------

const insertNotificationSQL = `
INSERT INTO notifications
  (id, email, type, title, message, data, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

const notificationColumns = `
  id, email, type, title, message, data, created_at, read_at`

const getNotificationSQL = `SELECT` + notificationColumns + `
FROM notifications
WHERE id = ?
`

// read_at is written once; a second call matches no row.
const markNotificationReadSQL = `
UPDATE notifications
SET read_at = ?
WHERE id = ? AND read_at IS NULL
`

const listNotificationsSQL = `SELECT` + notificationColumns + `
FROM notifications
WHERE email = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`
