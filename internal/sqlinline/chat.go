package sqlinline

const QInsertChatMessage = `--sql cb5c0b5d-d176-4dcc-84fe-98427bad725f
insert into chat_messages (id, channel, sender_id, sender_name, body, created_at)
values ($1::uuid, $2::text, $3::uuid, $4::text, $5::text, now())
returning created_at;
`

const QChatHistory = `--sql 8ed4833c-6eb2-419e-9bbc-80ab76d73b7a
select id, channel, sender_id, sender_name, body, created_at
from chat_messages
where channel = $1::text
  and created_at < $2::timestamptz
order by created_at desc
limit $3::int;
`
