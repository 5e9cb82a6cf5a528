package sqlinline

const QInsertUser = `--sql f9df5410-6b42-4d31-8baf-aeeb42fc5ca8
insert into users (id, username, email, password_hash, role, points, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, 0, now(), now())
returning points, created_at, updated_at;
`

const QSelectUserByID = `--sql cc9e2ec7-98a8-40aa-8d31-6443b96e39cf
select id, username, email, password_hash, role, points, created_at, updated_at
from users
where id = $1::uuid
limit 1;
`

const QSelectUserByUsername = `--sql 3d8f4df8-6e9f-4c11-9e09-1621ec634649
select id, username, email, password_hash, role, points, created_at, updated_at
from users
where lower(username) = lower($1::text)
limit 1;
`

const QUpdateUserProfile = `--sql 2006593f-499a-4140-9960-b0186149239c
update users
set username = $2::text,
    email = $3::text,
    updated_at = now()
where id = $1::uuid
returning id, username, email, password_hash, role, points, created_at, updated_at;
`

const QUpdateUserRole = `--sql 1e391cb3-4c46-4927-ac1f-d25b55f79e88
update users
set role = $2::text,
    updated_at = now()
where id = $1::uuid
returning id, username, email, password_hash, role, points, created_at, updated_at;
`

const QLeaderboard = `--sql 92175c89-1c42-417f-8822-26465d5a7c1c
select id, username, email, password_hash, role, points, created_at, updated_at
from users
order by points desc, username asc
limit $1::int;
`
