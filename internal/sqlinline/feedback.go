package sqlinline

const QInsertFeedback = `--sql 1c91d151-77fb-4cdf-b351-ff9f43c488d0
insert into feedback (id, user_id, message, polarity, subjectivity, submitted_at)
values ($1::uuid, $2::uuid, $3::text, $4::double precision, $5::double precision, now())
returning submitted_at;
`

const QListRecentFeedback = `--sql 34fe17b7-2772-448c-af74-526a4b021817
select f.id, f.user_id::text, coalesce(u.username, ''), f.message, f.polarity, f.subjectivity, f.submitted_at
from feedback f
left join users u on u.id = f.user_id
order by f.submitted_at desc
limit $1::int;
`
