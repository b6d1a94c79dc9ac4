package store

const queryUpsertOrder = `
INSERT INTO orders (order_sn, order_status, payload)
VALUES (@order_sn, @order_status, @payload)
ON CONFLICT (order_sn) DO UPDATE SET
	order_status = EXCLUDED.order_status,
	payload      = EXCLUDED.payload,
	updated_at   = now()
`

const queryListOrders = `
SELECT order_sn, order_status, payload, first_seen_at, updated_at
FROM orders
WHERE (@status = '' OR order_status = @status)
ORDER BY updated_at DESC, order_sn
LIMIT @limit OFFSET @offset
`

const queryCountOrders = `
SELECT count(*)
FROM orders
WHERE (@status = '' OR order_status = @status)
`

const queryGetLastSync = `
SELECT last_synced_at FROM sync_state WHERE id = 1
`

const querySetLastSync = `
INSERT INTO sync_state (id, last_synced_at)
VALUES (1, @at)
ON CONFLICT (id) DO UPDATE SET last_synced_at = EXCLUDED.last_synced_at
`
