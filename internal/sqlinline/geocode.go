package sqlinline

const QSelectGeocodeCache = `--sql f54adb37-b1f5-47f5-bed5-7da1c53cb13a
select key, query, found, latitude, longitude, updated_at
from geocode_cache
where key = $1::text
limit 1;
`

const QUpsertGeocodeCache = `--sql 93c79e9c-2b5a-4599-a153-2775862d4582
insert into geocode_cache (key, query, found, latitude, longitude, updated_at)
values ($1::text, $2::text, $3::bool, $4::double precision, $5::double precision, now())
on conflict (key) do update set
    query = excluded.query,
    found = excluded.found,
    latitude = excluded.latitude,
    longitude = excluded.longitude,
    updated_at = now();
`
